package selection

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"merchify/models"
	"merchify/services/catalog"
	ai "merchify/services/intelligence"
	"merchify/utils"

	"go.uber.org/zap"
)

const maxColorAlternatives = 3

// ColorSelector matches a requested color against one product's variant
// colors. Deterministic tiers run before the model: an exact match is high
// confidence, a synonym or substring match medium, and a model-asserted
// match only ever reaches low. No match yields an empty primary plus a few
// available colors as alternatives.
type ColorSelector struct {
	ai      ai.Client
	cache   *catalog.Cache
	timeout time.Duration
}

func NewColorSelector(client ai.Client, cache *catalog.Cache, timeout time.Duration) *ColorSelector {
	return &ColorSelector{ai: client, cache: cache, timeout: timeout}
}

// SelectColor resolves colorText against productID's variant colors. A
// product id that no longer resolves returns catalog.ErrNotFound so the
// caller can ask for reselection instead of guessing.
func (s *ColorSelector) SelectColor(ctx context.Context, colorText, productID string) (*models.SelectionDecision, error) {
	product, err := s.cache.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	available := product.Colors()
	requested := strings.ToLower(strings.TrimSpace(colorText))
	if requested == "" || len(available) == 0 {
		return noColorMatch(requested, available), nil
	}

	if match, confidence := matchColorDeterministic(requested, available); match != "" {
		return &models.SelectionDecision{
			Primary:    match,
			Confidence: confidence,
			Reasoning:  "matched against the product's available colors",
		}, nil
	}

	if match, explanation := s.matchColorWithModel(ctx, requested, available, product.Title); match != "" {
		return &models.SelectionDecision{
			Primary:    match,
			Confidence: models.ConfidenceLow,
			Reasoning:  explanation,
		}, nil
	}

	return noColorMatch(requested, available), nil
}

// matchColorDeterministic tries exact then synonym/substring matching.
func matchColorDeterministic(requested string, available []string) (string, models.Confidence) {
	for _, color := range available {
		if strings.ToLower(color) == requested {
			return color, models.ConfidenceHigh
		}
	}

	for _, color := range available {
		lower := strings.ToLower(color)
		if strings.Contains(lower, requested) || strings.Contains(requested, lower) {
			return color, models.ConfidenceMedium
		}
	}

	if family, ok := colorFamilies[requested]; ok {
		for _, color := range available {
			if strings.Contains(strings.ToLower(color), family) {
				return color, models.ConfidenceMedium
			}
		}
	}
	return "", models.ConfidenceNone
}

// colorFamilies maps common color words to the family word that tends to
// appear in variant color names.
var colorFamilies = map[string]string{
	"navy":      "blue",
	"royal":     "blue",
	"sky":       "blue",
	"crimson":   "red",
	"maroon":    "red",
	"scarlet":   "red",
	"charcoal":  "grey",
	"gray":      "grey",
	"silver":    "grey",
	"olive":     "green",
	"forest":    "green",
	"lime":      "green",
	"gold":      "yellow",
	"violet":    "purple",
	"lavender":  "purple",
	"burgundy":  "red",
	"turquoise": "blue",
}

type colorModelResponse struct {
	MatchedColor string   `json:"matched_color"`
	Alternatives []string `json:"alternatives"`
	Explanation  string   `json:"explanation"`
}

// matchColorWithModel asks the model for a match and trusts it only if the
// answer appears in the available list. Any failure here is a non-match,
// never an error.
func (s *ColorSelector) matchColorWithModel(ctx context.Context, requested string, available []string, productTitle string) (string, string) {
	logger := utils.GetLogger()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.ai.GenerateContent(callCtx, buildColorPrompt(requested, available, productTitle))
	if err != nil {
		logger.Debug("Model color match failed", zap.Error(err))
		return "", ""
	}

	var resp colorModelResponse
	if err := json.Unmarshal([]byte(stripMarkdownFences(raw)), &resp); err != nil {
		logger.Debug("Model color response was not valid JSON", zap.Error(err))
		return "", ""
	}

	for _, color := range available {
		if strings.EqualFold(color, resp.MatchedColor) {
			return color, resp.Explanation
		}
	}
	if resp.MatchedColor != "" {
		logger.Debug("Model asserted a color not in the available list",
			zap.String("asserted", resp.MatchedColor))
	}
	return "", ""
}

func noColorMatch(requested string, available []string) *models.SelectionDecision {
	alts := available
	if len(alts) > maxColorAlternatives {
		alts = alts[:maxColorAlternatives]
	}
	return &models.SelectionDecision{
		Alternatives: alts,
		Confidence:   models.ConfidenceNone,
		Reasoning:    "requested color is not available for this product",
	}
}
