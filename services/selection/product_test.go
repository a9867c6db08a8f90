package selection

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"merchify/models"
	"merchify/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type listFetcher struct {
	products []models.Product
	err      error
}

func (f *listFetcher) FetchProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, f.err
}

func newTestCache(t *testing.T, products []models.Product) *catalog.Cache {
	t.Helper()
	return catalog.NewCache(
		&listFetcher{products: products},
		filepath.Join(t.TempDir(), "catalog.json"),
		time.Hour,
	)
}

func selectorProducts() []models.Product {
	return []models.Product{
		{ID: "101", Title: "Unisex Heavy Cotton Tee", Category: "shirt", Tags: []string{"cotton"}},
		{ID: "202", Title: "Trucker Hat", Category: "hat"},
		{ID: "303", Title: "Ceramic Mug", Category: "mug"},
	}
}

func TestSelectAcceptsValidModelDecision(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"primary": "202", "alternatives": ["101"], "confidence": "high", "reasoning": "user asked for a hat"}`,
	}}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "I want a hat", nil)
	require.NoError(t, err)
	assert.Equal(t, "202", decision.Primary)
	assert.Equal(t, models.ConfidenceHigh, decision.Confidence)
}

func TestSelectRetriesModelOnce(t *testing.T) {
	client := &scriptedClient{
		errs: []error{errors.New("timeout"), nil},
		responses: []string{
			"",
			`{"primary": "303", "confidence": "medium", "reasoning": "mug"}`,
		},
	}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "a mug please", nil)
	require.NoError(t, err)
	assert.Equal(t, "303", decision.Primary)
	assert.Equal(t, 2, client.calls)
}

func TestSelectFallsBackWhenModelIsDown(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("down"), errors.New("down")}}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "I want a trucker hat", nil)
	require.NoError(t, err)
	assert.Equal(t, "202", decision.Primary, "fallback should find the hat lexically")
	assert.Equal(t, models.ConfidenceNone, decision.Confidence)
}

func TestSelectFallsBackOnInvalidResponse(t *testing.T) {
	client := &scriptedClient{responses: []string{"the hat is nice, pick that one"}}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "ceramic mug", nil)
	require.NoError(t, err)
	assert.Equal(t, "303", decision.Primary)
	assert.Equal(t, models.ConfidenceNone, decision.Confidence)
}

func TestSelectFallsBackOnHallucinatedProduct(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"primary": "999", "confidence": "high", "reasoning": "invented"}`,
	}}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "cotton tee", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "999", decision.Primary, "invented ids must never pass through")
	assert.Equal(t, "101", decision.Primary)
}

func TestSelectAlwaysAnswersEvenWithNoMatch(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("down"), errors.New("down")}}
	selector := NewProductSelector(client, newTestCache(t, selectorProducts()), time.Second)

	decision, err := selector.Select(context.Background(), "xyzzy plugh", nil)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Empty(t, decision.Primary)
	assert.Equal(t, models.ConfidenceNone, decision.Confidence)
}

func TestSelectErrorsOnlyWithoutAnySnapshot(t *testing.T) {
	cache := catalog.NewCache(
		&listFetcher{err: errors.New("provider down")},
		filepath.Join(t.TempDir(), "catalog.json"),
		time.Hour,
	)
	client := &scriptedClient{}
	selector := NewProductSelector(client, cache, time.Second)

	_, err := selector.Select(context.Background(), "a hat", nil)
	require.Error(t, err)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "red trucker hat", normalizeQuery("I want a red trucker hat, please!"))
	assert.Equal(t, "hi", normalizeQuery("hi"))
}
