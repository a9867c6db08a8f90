package selection

import (
	"encoding/json"
	"fmt"
	"strings"

	"merchify/models"
	"merchify/utils"

	"go.uber.org/zap"
)

// MaxAlternatives bounds the alternatives list a decision may carry.
const MaxAlternatives = 5

// ParseDecision validates a raw model response against the selection schema
// and returns a structured decision. Recoverable deviations (numeric ids,
// scalar alternatives, off-enum confidence) are auto-corrected and logged.
// The referential check runs last and is never auto-corrected: a primary id
// that does not resolve in candidates fails validation outright.
func ParseDecision(raw string, candidates map[string]models.Product) (*models.SelectionDecision, *ValidationError) {
	logger := utils.GetLogger()

	body := stripMarkdownFences(raw)
	if body == "" {
		return nil, &ValidationError{Field: "response", Reason: "empty response"}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, &ValidationError{Field: "response", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	for _, required := range []string{"primary", "confidence", "reasoning"} {
		if _, ok := fields[required]; !ok {
			return nil, &ValidationError{Field: required, Reason: "missing required field"}
		}
	}

	primary, ok := coerceID(fields["primary"])
	if !ok {
		return nil, &ValidationError{Field: "primary", Reason: "must be a product id"}
	}

	confidence, corrected, ok := coerceConfidence(fields["confidence"])
	if !ok {
		return nil, &ValidationError{Field: "confidence", Reason: "unrecognized confidence value"}
	}
	if corrected {
		logger.Debug("Auto-corrected confidence value",
			zap.Any("raw", fields["confidence"]), zap.String("corrected", string(confidence)))
	}

	reasoning, ok := fields["reasoning"].(string)
	if !ok {
		return nil, &ValidationError{Field: "reasoning", Reason: "must be a string"}
	}

	alternatives, altErr := coerceAlternatives(fields["alternatives"], candidates)
	if altErr != nil {
		return nil, altErr
	}

	if _, found := candidates[primary]; !found {
		return nil, &ValidationError{Field: "primary", Reason: fmt.Sprintf("id %q not in catalog", primary)}
	}

	return &models.SelectionDecision{
		Primary:      primary,
		Alternatives: alternatives,
		Confidence:   confidence,
		Reasoning:    reasoning,
	}, nil
}

// stripMarkdownFences unwraps a ```json ... ``` (or bare ```) block, a
// habit language models have even when told to emit raw JSON.
func stripMarkdownFences(raw string) string {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}
	if strings.Contains(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return text
}

// coerceID accepts a string or numeric product id. Models trained on the
// provider's numeric ids frequently emit them unquoted.
func coerceID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return fmt.Sprintf("%.0f", id), true
	default:
		return "", false
	}
}

// confidence synonyms models drift into despite the enum in the prompt.
var confidenceSynonyms = map[string]models.Confidence{
	"very_high": models.ConfidenceHigh,
	"very high": models.ConfidenceHigh,
	"certain":   models.ConfidenceHigh,
	"exact":     models.ConfidenceHigh,
	"moderate":  models.ConfidenceMedium,
	"fair":      models.ConfidenceMedium,
	"weak":      models.ConfidenceLow,
	"unsure":    models.ConfidenceLow,
	"unknown":   models.ConfidenceNone,
	"no_match":  models.ConfidenceNone,
}

func coerceConfidence(v any) (models.Confidence, bool, bool) {
	switch c := v.(type) {
	case string:
		level := models.Confidence(strings.ToLower(strings.TrimSpace(c)))
		if level.Valid() {
			return level, false, true
		}
		if mapped, ok := confidenceSynonyms[string(level)]; ok {
			return mapped, true, true
		}
		return "", false, false
	case float64:
		return nearestConfidence(c), true, true
	default:
		return "", false, false
	}
}

// nearestConfidence maps a numeric score onto the enum.
func nearestConfidence(score float64) models.Confidence {
	switch {
	case score >= 0.75:
		return models.ConfidenceHigh
	case score >= 0.4:
		return models.ConfidenceMedium
	case score > 0:
		return models.ConfidenceLow
	default:
		return models.ConfidenceNone
	}
}

// coerceAlternatives normalizes the alternatives field: absent means none,
// a scalar becomes a one-element list, unknown ids are dropped, and the
// list is truncated to MaxAlternatives.
func coerceAlternatives(v any, candidates map[string]models.Product) ([]string, *ValidationError) {
	logger := utils.GetLogger()

	var rawList []any
	switch alts := v.(type) {
	case nil:
		return nil, nil
	case []any:
		rawList = alts
	case string, float64:
		logger.Debug("Auto-corrected scalar alternatives into a list", zap.Any("raw", v))
		rawList = []any{alts}
	default:
		return nil, &ValidationError{Field: "alternatives", Reason: "must be a list of product ids"}
	}

	var out []string
	for _, entry := range rawList {
		id, ok := coerceID(entry)
		if !ok {
			return nil, &ValidationError{Field: "alternatives", Reason: "entries must be product ids"}
		}
		if _, found := candidates[id]; !found {
			logger.Debug("Dropping alternative not present in catalog", zap.String("id", id))
			continue
		}
		out = append(out, id)
	}
	if len(out) > MaxAlternatives {
		logger.Debug("Truncating alternatives list", zap.Int("had", len(out)))
		out = out[:MaxAlternatives]
	}
	return out, nil
}
