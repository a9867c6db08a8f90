package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchify/models"

	"github.com/stretchr/testify/assert"
)

type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	idx := c.calls
	c.calls++
	if idx < len(c.errs) && c.errs[idx] != nil {
		return "", c.errs[idx]
	}
	if idx < len(c.responses) {
		return c.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

func TestAdjustAppliesModelSettingsClamped(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"scale": 5.0, "x": 0.95, "y": 0.05, "explanation": "moved to the top right"}`,
	}}
	adjuster := NewLogoAdjuster(client, time.Second)

	settings, explanation := adjuster.Adjust(context.Background(), "huge, top right", models.DefaultLogoSettings())
	assert.Equal(t, 2.0, settings.Scale)
	assert.Equal(t, 0.9, settings.X)
	assert.Equal(t, 0.1, settings.Y)
	assert.Equal(t, "moved to the top right", explanation)
}

func TestAdjustKeepsOmittedFields(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"x": 0.2, "explanation": "nudged left"}`,
	}}
	adjuster := NewLogoAdjuster(client, time.Second)

	current := models.LogoSettings{Scale: 1.5, X: 0.5, Y: 0.3}
	settings, _ := adjuster.Adjust(context.Background(), "a bit left", current)
	assert.Equal(t, 1.5, settings.Scale)
	assert.Equal(t, 0.2, settings.X)
	assert.Equal(t, 0.3, settings.Y)
}

func TestAdjustFallsBackToKeywords(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("down")}}
	adjuster := NewLogoAdjuster(client, time.Second)

	settings, explanation := adjuster.Adjust(context.Background(), "make it smaller and move it left", models.DefaultLogoSettings())
	assert.InDelta(t, 0.75, settings.Scale, 1e-9)
	assert.InDelta(t, 0.25, settings.X, 1e-9)
	assert.NotEmpty(t, explanation)
}

func TestKeywordAdjustSteps(t *testing.T) {
	base := models.DefaultLogoSettings()

	tests := []struct {
		text string
		want models.LogoSettings
	}{
		{"smaller", models.LogoSettings{Scale: 0.75, X: 0.5, Y: 0.5}},
		{"bigger", models.LogoSettings{Scale: 1.25, X: 0.5, Y: 0.5}},
		{"move left", models.LogoSettings{Scale: 1.0, X: 0.25, Y: 0.5}},
		{"move right", models.LogoSettings{Scale: 1.0, X: 0.75, Y: 0.5}},
		{"move to the top", models.LogoSettings{Scale: 1.0, X: 0.5, Y: 0.25}},
		{"move to the bottom", models.LogoSettings{Scale: 1.0, X: 0.5, Y: 0.75}},
		{"center it", models.LogoSettings{Scale: 1.0, X: 0.5, Y: 0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got, _ := keywordAdjust(tc.text, base)
			assert.InDelta(t, tc.want.Scale, got.Scale, 1e-9)
			assert.InDelta(t, tc.want.X, got.X, 1e-9)
			assert.InDelta(t, tc.want.Y, got.Y, 1e-9)
		})
	}
}

func TestKeywordAdjustClampsAtBounds(t *testing.T) {
	settings := models.LogoSettings{Scale: 0.12, X: 0.15, Y: 0.85}

	got, _ := keywordAdjust("smaller and to the left and down", settings)
	assert.Equal(t, 0.1, got.Scale)
	assert.Equal(t, 0.1, got.X)
	assert.Equal(t, 0.9, got.Y)
}
