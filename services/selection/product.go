package selection

import (
	"context"
	"strings"
	"time"

	"merchify/models"
	"merchify/services/catalog"
	ai "merchify/services/intelligence"
	"merchify/utils"

	"go.uber.org/zap"
)

// ProductSelector turns a free-form product request into a validated
// catalog decision. The model proposes, the schema validates, and a
// deterministic keyword fallback guarantees a decision even when the model
// is down or talks nonsense. The only hard failure is having no catalog
// snapshot at all.
type ProductSelector struct {
	ai      ai.Client
	cache   *catalog.Cache
	timeout time.Duration
}

func NewProductSelector(client ai.Client, cache *catalog.Cache, timeout time.Duration) *ProductSelector {
	return &ProductSelector{ai: client, cache: cache, timeout: timeout}
}

// Select resolves userText to a product decision against the current
// snapshot. The model call is retried once on failure; validation failures
// are never retried and route straight to the fallback.
func (s *ProductSelector) Select(ctx context.Context, userText string, convCtx *models.ConversationContext) (*models.SelectionDecision, error) {
	logger := utils.GetLogger()

	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.cache.Search(ctx, userText, MaxAlternatives)
	if err != nil {
		logger.Warn("Candidate search failed, prompting without candidates", zap.Error(err))
	}
	prompt := buildProductPrompt(snap, userText, convCtx, candidates)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		logger.Warn("Model call failed, retrying once", zap.Error(err))
		raw, err = s.generate(ctx, prompt)
	}
	if err != nil {
		logger.Warn("Model unavailable, using keyword fallback", zap.Error(err))
		return s.fallback(ctx, userText, snap), nil
	}

	decision, verr := ParseDecision(raw, snap.Products)
	if verr != nil {
		logger.Warn("Model response failed validation, using keyword fallback", zap.Error(verr))
		return s.fallback(ctx, userText, snap), nil
	}
	return decision, nil
}

func (s *ProductSelector) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.ai.GenerateContent(callCtx, prompt)
}

// fallback produces a decision from lexical search alone. It always
// answers: the worst case is an empty primary with confidence none.
func (s *ProductSelector) fallback(ctx context.Context, userText string, snap *models.Snapshot) *models.SelectionDecision {
	hits, err := s.cache.Search(ctx, normalizeQuery(userText), MaxAlternatives+1)
	if err != nil || len(hits) == 0 {
		return &models.SelectionDecision{
			Confidence: models.ConfidenceNone,
			Reasoning:  "no catalog product matched the request",
		}
	}

	alternatives := make([]string, 0, len(hits)-1)
	for _, p := range hits[1:] {
		alternatives = append(alternatives, p.ID)
	}
	return &models.SelectionDecision{
		Primary:      hits[0].ID,
		Alternatives: alternatives,
		Confidence:   models.ConfidenceNone,
		Reasoning:    "keyword match on the catalog, model assistance unavailable",
	}
}

var fillerWords = map[string]struct{}{
	"i": {}, "want": {}, "need": {}, "a": {}, "an": {}, "the": {},
	"some": {}, "please": {}, "me": {}, "show": {}, "get": {}, "like": {},
	"would": {}, "looking": {}, "for": {},
}

// normalizeQuery strips conversational filler so the lexical tiers see the
// product words.
func normalizeQuery(text string) string {
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")
		if _, filler := fillerWords[word]; filler || word == "" {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return strings.ToLower(strings.TrimSpace(text))
	}
	return strings.Join(kept, " ")
}
