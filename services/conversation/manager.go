package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"merchify/models"
	"merchify/services/catalog"
	ai "merchify/services/intelligence"
	"merchify/services/selection"
	"merchify/utils"

	"go.uber.org/zap"
)

// TurnRecorder receives every completed turn for audit logging. Recording
// is best effort; a failing recorder never fails the turn.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, sessionID string, userText string, result *models.TurnResult) error
	PurgeSession(ctx context.Context, sessionID string) error
}

// Manager runs one conversation turn end to end: classify the intent,
// dispatch to the right selector, and persist the updated context. Context
// is mutated only after the turn succeeds; a failed turn leaves the stored
// context exactly as it was.
type Manager struct {
	store    *ai.RedisContextStore
	cache    *catalog.Cache
	products *selection.ProductSelector
	colors   *selection.ColorSelector
	logo     *LogoAdjuster
	recorder TurnRecorder
	accept   models.Confidence
}

func NewManager(
	store *ai.RedisContextStore,
	cache *catalog.Cache,
	products *selection.ProductSelector,
	colors *selection.ColorSelector,
	logo *LogoAdjuster,
	accept models.Confidence,
) *Manager {
	if !accept.Valid() {
		accept = models.ConfidenceLow
	}
	return &Manager{
		store:    store,
		cache:    cache,
		products: products,
		colors:   colors,
		logo:     logo,
		accept:   accept,
	}
}

// WithRecorder attaches an audit recorder for completed turns.
func (m *Manager) WithRecorder(r TurnRecorder) *Manager {
	m.recorder = r
	return m
}

// HandleTurn processes one user message for a session.
func (m *Manager) HandleTurn(ctx context.Context, sessionID, userText string) (*models.TurnResult, error) {
	logger := utils.GetLogger()

	convCtx, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation context: %w", err)
	}

	intent := ClassifyIntent(userText, convCtx)
	logger.Debug("Classified turn intent",
		zap.String("session", sessionID), zap.String("intent", string(intent)))

	var result *models.TurnResult
	switch intent {
	case models.IntentProductRequest:
		result, err = m.handleProductRequest(ctx, userText, convCtx)
	case models.IntentColorRequest:
		result, err = m.handleColorRequest(ctx, userText, convCtx)
	case models.IntentLogoAdjustment:
		result = m.handleLogoAdjustment(ctx, userText, convCtx)
	case models.IntentRecommendation:
		result, err = m.handleRecommendation(ctx, userText, convCtx)
	default:
		result = m.handleGeneral(convCtx)
	}
	if err != nil {
		// A turn never surfaces a bare error to the user. Answer with a
		// recovery response and leave the stored context untouched so the
		// next turn starts from the last good state.
		logger.Warn("Turn failed, answering with a recovery response",
			zap.String("session", sessionID), zap.String("intent", string(intent)), zap.Error(err))
		return &models.TurnResult{
			Intent:   intent,
			Decision: models.SelectionDecision{Confidence: models.ConfidenceNone},
			Response: "I'm having trouble reaching the catalog right now. Please try again in a moment.",
		}, nil
	}

	convCtx.AppendTurn("user", userText)
	convCtx.AppendTurn("assistant", result.Response)
	if err := m.store.Set(ctx, sessionID, convCtx); err != nil {
		return nil, fmt.Errorf("save conversation context: %w", err)
	}

	if m.recorder != nil {
		if rerr := m.recorder.RecordTurn(ctx, sessionID, userText, result); rerr != nil {
			logger.Warn("Failed to record turn", zap.String("session", sessionID), zap.Error(rerr))
		}
	}
	return result, nil
}

// Reset clears a session back to its initial state, dropping its audit
// trail along with the stored context.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	if err := m.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	if m.recorder != nil {
		if err := m.recorder.PurgeSession(ctx, sessionID); err != nil {
			utils.GetLogger().Warn("Failed to purge session audit log",
				zap.String("session", sessionID), zap.Error(err))
		}
	}
	return nil
}

func (m *Manager) handleProductRequest(ctx context.Context, userText string, convCtx *models.ConversationContext) (*models.TurnResult, error) {
	decision, err := m.products.Select(ctx, userText, convCtx)
	if err != nil {
		return nil, fmt.Errorf("product selection: %w", err)
	}

	result := &models.TurnResult{Intent: models.IntentProductRequest, Decision: *decision}

	if decision.Primary == "" || !decision.Confidence.AtLeast(m.accept) {
		result.Response = m.clarificationResponse(ctx, decision)
		return result, nil
	}

	product, err := m.cache.Lookup(ctx, decision.Primary)
	if err != nil {
		// Validated against the same snapshot, so this only fires on a
		// refresh racing the turn.
		result.Response = "That product just changed in our catalog. Could you tell me again what you're looking for?"
		result.NeedsReselection = true
		return result, nil
	}

	convCtx.SelectedProductID = product.ID
	convCtx.SelectedColor = ""
	convCtx.LastError = ""

	result.Response = fmt.Sprintf("I found %s for you. %s", product.Title, decision.Reasoning)
	result.Render = &models.RenderDirective{
		ProductID:  product.ID,
		VariantIDs: variantIDs(product.Variants),
		Logo:       convCtx.Logo,
	}
	return result, nil
}

func (m *Manager) handleColorRequest(ctx context.Context, userText string, convCtx *models.ConversationContext) (*models.TurnResult, error) {
	result := &models.TurnResult{Intent: models.IntentColorRequest}

	if convCtx.SelectedProductID == "" {
		result.Response = "Let's pick a product first, then I can match colors for it. What are you looking for?"
		return result, nil
	}

	colorText := extractColorPhrase(userText)
	decision, err := m.colors.SelectColor(ctx, colorText, convCtx.SelectedProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			convCtx.SelectedProductID = ""
			convCtx.SelectedColor = ""
			result.Response = "The product you had selected is no longer in the catalog. Let's pick a new one."
			result.NeedsReselection = true
			return result, nil
		}
		return nil, fmt.Errorf("color selection: %w", err)
	}

	result.Decision = *decision

	if decision.Primary == "" {
		if len(decision.Alternatives) > 0 {
			result.Response = fmt.Sprintf("That color isn't available for this product. How about %s?",
				strings.Join(decision.Alternatives, ", "))
		} else {
			result.Response = "That color isn't available for this product."
		}
		return result, nil
	}

	product, err := m.cache.Lookup(ctx, convCtx.SelectedProductID)
	if err != nil {
		return nil, fmt.Errorf("lookup selected product: %w", err)
	}

	convCtx.SelectedColor = decision.Primary
	convCtx.LastError = ""

	result.Response = fmt.Sprintf("Done, switched to %s.", decision.Primary)
	result.Render = &models.RenderDirective{
		ProductID:  product.ID,
		VariantIDs: variantIDs(product.VariantsByColor(decision.Primary)),
		Color:      decision.Primary,
		Logo:       convCtx.Logo,
	}
	return result, nil
}

func (m *Manager) handleLogoAdjustment(ctx context.Context, userText string, convCtx *models.ConversationContext) *models.TurnResult {
	settings, explanation := m.logo.Adjust(ctx, userText, convCtx.Logo)
	convCtx.Logo = settings

	result := &models.TurnResult{
		Intent:   models.IntentLogoAdjustment,
		Response: explanation,
	}
	if convCtx.SelectedProductID != "" {
		result.Render = &models.RenderDirective{
			ProductID: convCtx.SelectedProductID,
			Color:     convCtx.SelectedColor,
			Logo:      settings,
		}
	}
	return result
}

// handleRecommendation answers from the catalog snapshot directly, no
// model round trip.
func (m *Manager) handleRecommendation(ctx context.Context, userText string, convCtx *models.ConversationContext) (*models.TurnResult, error) {
	result := &models.TurnResult{Intent: models.IntentRecommendation}

	hits, err := m.cache.Search(ctx, userText, 3)
	if err != nil {
		return nil, fmt.Errorf("recommendation search: %w", err)
	}
	if len(hits) == 0 {
		hits, err = m.popularProducts(ctx, 3)
		if err != nil {
			return nil, fmt.Errorf("recommendation fallback: %w", err)
		}
	}
	if len(hits) == 0 {
		result.Response = "I don't have anything to recommend right now, the catalog looks empty."
		return result, nil
	}

	titles := make([]string, len(hits))
	for i, p := range hits {
		titles[i] = p.Title
	}
	result.Response = "You might like: " + strings.Join(titles, ", ") + ". Want to go with one of these?"
	result.Decision = models.SelectionDecision{
		Primary:      hits[0].ID,
		Alternatives: productIDs(hits[1:]),
		Confidence:   models.ConfidenceLow,
		Reasoning:    "recommended from the catalog",
	}
	return result, nil
}

// popularProducts picks a spread across categories when the user's text
// gives the search nothing to work with.
func (m *Manager) popularProducts(ctx context.Context, limit int) ([]models.Product, error) {
	grouped, err := m.cache.Categories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var out []models.Product
	for _, cat := range categories {
		products := grouped[cat]
		if len(products) == 0 {
			continue
		}
		sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
		out = append(out, products[0])
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Manager) handleGeneral(convCtx *models.ConversationContext) *models.TurnResult {
	response := "How can I help with your merchandise today?"
	if convCtx.SelectedProductID != "" {
		response = "You have a product selected. Want to change its color, adjust the logo, or look at something else?"
	}
	return &models.TurnResult{Intent: models.IntentGeneral, Response: response}
}

func (m *Manager) clarificationResponse(ctx context.Context, decision *models.SelectionDecision) string {
	if decision.Primary == "" {
		return "I couldn't find a good match in our catalog. Could you describe what you're looking for differently?"
	}
	if product, err := m.cache.Lookup(ctx, decision.Primary); err == nil {
		return fmt.Sprintf("The closest I found is %s, but I'm not sure it's what you meant. Is it?", product.Title)
	}
	return "I found a possible match but I'm not confident about it. Could you give me more detail?"
}

func variantIDs(variants []models.Variant) []string {
	ids := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.Available {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
