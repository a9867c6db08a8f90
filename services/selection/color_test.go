package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchify/models"
	"merchify/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colorProducts() []models.Product {
	return []models.Product{
		{
			ID:    "101",
			Title: "Unisex Heavy Cotton Tee",
			Variants: []models.Variant{
				{ID: "v1", Color: "Navy", Available: true},
				{ID: "v2", Color: "Red", Available: true},
				{ID: "v3", Color: "White", Available: true},
			},
		},
	}
}

func TestSelectColorExactMatchIsHigh(t *testing.T) {
	client := &scriptedClient{}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	decision, err := selector.SelectColor(context.Background(), "red", "101")
	require.NoError(t, err)
	assert.Equal(t, "Red", decision.Primary)
	assert.Equal(t, models.ConfidenceHigh, decision.Confidence)
	assert.Equal(t, 0, client.calls, "deterministic match must not call the model")
}

func TestSelectColorSubstringMatchIsMedium(t *testing.T) {
	client := &scriptedClient{}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	decision, err := selector.SelectColor(context.Background(), "navy blue", "101")
	require.NoError(t, err)
	assert.Equal(t, "Navy", decision.Primary)
	assert.Equal(t, models.ConfidenceMedium, decision.Confidence)
}

func TestSelectColorFamilyMatchIsMedium(t *testing.T) {
	products := []models.Product{{
		ID: "101",
		Variants: []models.Variant{
			{ID: "v1", Color: "Forest Green", Available: true},
			{ID: "v2", Color: "White", Available: true},
		},
	}}
	client := &scriptedClient{}
	selector := NewColorSelector(client, newTestCache(t, products), time.Second)

	decision, err := selector.SelectColor(context.Background(), "olive", "101")
	require.NoError(t, err)
	assert.Equal(t, "Forest Green", decision.Primary)
	assert.Equal(t, models.ConfidenceMedium, decision.Confidence)
}

func TestSelectColorModelAssertedIsLow(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"matched_color": "Navy", "alternatives": [], "explanation": "closest to midnight"}`,
	}}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	decision, err := selector.SelectColor(context.Background(), "midnight", "101")
	require.NoError(t, err)
	assert.Equal(t, "Navy", decision.Primary)
	assert.Equal(t, models.ConfidenceLow, decision.Confidence)
}

func TestSelectColorRejectsModelInvention(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"matched_color": "Chartreuse", "alternatives": [], "explanation": "made up"}`,
	}}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	decision, err := selector.SelectColor(context.Background(), "chartreuse", "101")
	require.NoError(t, err)
	assert.Empty(t, decision.Primary)
	assert.Equal(t, models.ConfidenceNone, decision.Confidence)
	assert.Len(t, decision.Alternatives, 3)
	assert.Subset(t, []string{"Navy", "Red", "White"}, decision.Alternatives)
}

func TestSelectColorNoMatchListsAlternatives(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("down")}}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	decision, err := selector.SelectColor(context.Background(), "chartreuse", "101")
	require.NoError(t, err)
	assert.Empty(t, decision.Primary)
	assert.Equal(t, models.ConfidenceNone, decision.Confidence)
	assert.Len(t, decision.Alternatives, 3)
}

func TestSelectColorUnknownProductNeedsReselection(t *testing.T) {
	client := &scriptedClient{}
	selector := NewColorSelector(client, newTestCache(t, colorProducts()), time.Second)

	_, err := selector.SelectColor(context.Background(), "red", "999")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
