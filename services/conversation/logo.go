package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"merchify/models"
	ai "merchify/services/intelligence"
	"merchify/utils"

	"go.uber.org/zap"
)

// LogoAdjuster interprets natural-language logo requests ("make it smaller",
// "move it to the top right") into placement settings. The model does the
// interpretation; a keyword fallback keeps adjustments working without it.
// Every result is clamped to the printable region.
type LogoAdjuster struct {
	ai      ai.Client
	timeout time.Duration
}

func NewLogoAdjuster(client ai.Client, timeout time.Duration) *LogoAdjuster {
	return &LogoAdjuster{ai: client, timeout: timeout}
}

type logoModelResponse struct {
	Scale       *float64 `json:"scale"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Explanation string   `json:"explanation"`
}

// Adjust returns the new settings plus a user-facing explanation. Current
// settings are the baseline; fields the model omits stay unchanged.
func (a *LogoAdjuster) Adjust(ctx context.Context, userText string, current models.LogoSettings) (models.LogoSettings, string) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.ai.GenerateContent(callCtx, buildLogoPrompt(userText, current))
	if err != nil {
		utils.GetLogger().Debug("Model logo adjustment failed, using keyword fallback", zap.Error(err))
		return keywordAdjust(userText, current)
	}

	var resp logoModelResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		utils.GetLogger().Debug("Model logo response was not valid JSON", zap.Error(err))
		return keywordAdjust(userText, current)
	}

	next := current
	if resp.Scale != nil {
		next.Scale = *resp.Scale
	}
	if resp.X != nil {
		next.X = *resp.X
	}
	if resp.Y != nil {
		next.Y = *resp.Y
	}
	next = clampLogo(next)

	explanation := resp.Explanation
	if explanation == "" {
		explanation = "I've adjusted the logo as requested!"
	}
	return next, explanation
}

func buildLogoPrompt(userText string, current models.LogoSettings) string {
	var sb strings.Builder
	sb.WriteString("You are a logo positioning assistant for custom merchandise.\n\n")
	fmt.Fprintf(&sb, "User request: %q\n", userText)
	fmt.Fprintf(&sb, "Current settings: scale=%.2f x=%.2f y=%.2f\n\n", current.Scale, current.X, current.Y)
	sb.WriteString("Respond with JSON only:\n")
	sb.WriteString(`{"scale": 1.0, "x": 0.5, "y": 0.5, "explanation": "I moved the logo to the top right corner"}`)
	sb.WriteString("\n\nRanges: scale 0.1 to 2.0, x 0.1 (left) to 0.9 (right), y 0.1 (top) to 0.9 (bottom).\n")
	sb.WriteString("Omit a field to leave it unchanged.\n")
	return sb.String()
}

// keywordAdjust is the deterministic fallback: relative steps on the
// current settings per direction/size word.
func keywordAdjust(userText string, current models.LogoSettings) (models.LogoSettings, string) {
	msg := strings.ToLower(userText)
	next := current

	if strings.Contains(msg, "smaller") {
		next.Scale = current.Scale * 0.75
	} else if strings.Contains(msg, "bigger") || strings.Contains(msg, "larger") {
		next.Scale = current.Scale * 1.25
	}

	if strings.Contains(msg, "center") || strings.Contains(msg, "centre") {
		next.X = 0.5
		next.Y = 0.5
	} else if strings.Contains(msg, "left") {
		next.X = current.X - 0.25
	} else if strings.Contains(msg, "right") {
		next.X = current.X + 0.25
	}

	if strings.Contains(msg, "up") || strings.Contains(msg, "top") {
		next.Y = current.Y - 0.25
	} else if strings.Contains(msg, "down") || strings.Contains(msg, "bottom") {
		next.Y = current.Y + 0.25
	}

	return clampLogo(next), "I've adjusted the logo as requested!"
}

func clampLogo(s models.LogoSettings) models.LogoSettings {
	s.Scale = clamp(s.Scale, 0.1, 2.0)
	s.X = clamp(s.X, 0.1, 0.9)
	s.Y = clamp(s.Y, 0.1, 0.9)
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stripFences unwraps a fenced code block around the model's JSON.
func stripFences(raw string) string {
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
