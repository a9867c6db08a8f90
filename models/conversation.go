package models

// Intent classifies a single conversation turn.
type Intent string

const (
	IntentProductRequest Intent = "product_request"
	IntentColorRequest   Intent = "color_request"
	IntentLogoAdjustment Intent = "logo_adjustment"
	IntentRecommendation Intent = "recommendation_request"
	IntentGeneral        Intent = "general"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

// LogoSettings describes logo placement on the selected product.
// Scale is bounded to [0.1, 2.0]; X and Y to [0.1, 0.9] where (0.5, 0.5)
// is the center of the print area.
type LogoSettings struct {
	Scale float64 `json:"scale" bson:"scale"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
}

// DefaultLogoSettings returns a centered, unscaled placement.
func DefaultLogoSettings() LogoSettings {
	return LogoSettings{Scale: 1.0, X: 0.5, Y: 0.5}
}

// MaxHistoryTurns bounds conversation history growth; older turns are
// dropped from the front.
const MaxHistoryTurns = 20

// ConversationContext is the per-session state threaded through the turn
// pipeline. It is the only mutable shared state in the pipeline and is
// mutated exclusively by the conversation manager after a successful turn.
type ConversationContext struct {
	SessionID         string            `json:"session_id" bson:"sessionId"`
	History           []Turn            `json:"history" bson:"history"`
	SelectedProductID string            `json:"selected_product_id,omitempty" bson:"selectedProductId,omitempty"`
	SelectedColor     string            `json:"selected_color,omitempty" bson:"selectedColor,omitempty"`
	Logo              LogoSettings      `json:"logo" bson:"logo"`
	Preferences       map[string]string `json:"preferences,omitempty" bson:"preferences,omitempty"`
	LastError         string            `json:"last_error,omitempty" bson:"lastError,omitempty"`
}

// NewConversationContext returns the initial state for a session.
func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID:   sessionID,
		Logo:        DefaultLogoSettings(),
		Preferences: make(map[string]string),
	}
}

// AppendTurn records a turn, trimming history to MaxHistoryTurns.
func (c *ConversationContext) AppendTurn(role, content string) {
	c.History = append(c.History, Turn{Role: role, Content: content})
	if len(c.History) > MaxHistoryTurns {
		c.History = c.History[len(c.History)-MaxHistoryTurns:]
	}
}

// Reset clears the context back to its initial state, keeping the session id.
func (c *ConversationContext) Reset() {
	c.History = nil
	c.SelectedProductID = ""
	c.SelectedColor = ""
	c.Logo = DefaultLogoSettings()
	c.Preferences = make(map[string]string)
	c.LastError = ""
}

// RenderDirective is what the rendering layer consumes after a turn: the
// selected product and variants plus logo placement. The core never renders.
type RenderDirective struct {
	ProductID  string       `json:"product_id,omitempty"`
	VariantIDs []string     `json:"variant_ids,omitempty"`
	Color      string       `json:"color,omitempty"`
	Logo       LogoSettings `json:"logo"`
}

// TurnResult is the structured outcome of one conversation turn.
type TurnResult struct {
	Intent           Intent            `json:"intent"`
	Decision         SelectionDecision `json:"decision"`
	Response         string            `json:"response"`
	Render           *RenderDirective  `json:"render,omitempty"`
	NeedsReselection bool              `json:"needs_reselection,omitempty"`
}
