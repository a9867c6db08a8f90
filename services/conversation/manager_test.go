package conversation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"merchify/models"
	"merchify/services/catalog"
	ai "merchify/services/intelligence"
	"merchify/services/selection"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorFetcher struct{}

func (errorFetcher) FetchProducts(ctx context.Context) ([]models.Product, error) {
	return nil, errors.New("provider down")
}

type listFetcher struct {
	products []models.Product
}

func (f *listFetcher) FetchProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func managerProducts() []models.Product {
	return []models.Product{
		{
			ID:       "101",
			Title:    "Unisex Heavy Cotton Tee",
			Category: "shirt",
			Variants: []models.Variant{
				{ID: "v1", Color: "Navy", Available: true},
				{ID: "v2", Color: "Green", Available: true},
				{ID: "v3", Color: "Green", Size: "L", Available: true},
			},
		},
		{
			ID:       "202",
			Title:    "Trucker Hat",
			Category: "hat",
			Variants: []models.Variant{{ID: "v4", Color: "Black", Available: true}},
		},
	}
}

type managerFixture struct {
	manager *Manager
	store   *ai.RedisContextStore
	client  *scriptedClient
}

func newManagerFixture(t *testing.T, client *scriptedClient, fetcher catalog.Fetcher) *managerFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := ai.NewRedisContextStore(rdb, time.Hour)
	cache := catalog.NewCache(fetcher, filepath.Join(t.TempDir(), "catalog.json"), time.Hour)

	timeout := time.Second
	manager := NewManager(
		store,
		cache,
		selection.NewProductSelector(client, cache, timeout),
		selection.NewColorSelector(client, cache, timeout),
		NewLogoAdjuster(client, timeout),
		models.ConfidenceLow,
	)
	return &managerFixture{manager: manager, store: store, client: client}
}

func TestHandleTurnProductRequestUpdatesContext(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"primary": "101", "alternatives": ["202"], "confidence": "high", "reasoning": "cotton tee fits"}`,
	}}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err)
	assert.Equal(t, models.IntentProductRequest, result.Intent)
	assert.Equal(t, "101", result.Decision.Primary)
	require.NotNil(t, result.Render)
	assert.Equal(t, "101", result.Render.ProductID)
	assert.Len(t, result.Render.VariantIDs, 3)

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "101", convCtx.SelectedProductID)
	assert.Len(t, convCtx.History, 2)
}

func TestHandleTurnBareColorAfterSelection(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"primary": "101", "confidence": "high", "reasoning": "tee"}`,
	}}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	_, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err)

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "make it green")
	require.NoError(t, err)
	assert.Equal(t, models.IntentColorRequest, result.Intent)
	assert.Equal(t, "Green", result.Decision.Primary)
	require.NotNil(t, result.Render)
	assert.ElementsMatch(t, []string{"v2", "v3"}, result.Render.VariantIDs)

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Green", convCtx.SelectedColor)
}

func TestHandleTurnColorWithoutSelection(t *testing.T) {
	client := &scriptedClient{}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "change the color to green")
	require.NoError(t, err)
	assert.Equal(t, models.IntentColorRequest, result.Intent)
	assert.Nil(t, result.Render)
	assert.Equal(t, 0, client.calls)
}

func TestHandleTurnUnavailableColorListsAlternatives(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"primary": "101", "confidence": "high", "reasoning": "tee"}`,
			`{"matched_color": null, "alternatives": [], "explanation": "no match"}`,
		},
	}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	_, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err)

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "make it burgundy")
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceNone, result.Decision.Confidence)
	assert.Contains(t, result.Response, "Green")

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, convCtx.SelectedColor, "failed color match must not change the selection")
}

func TestHandleTurnLogoAdjustment(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`{"primary": "101", "confidence": "high", "reasoning": "tee"}`,
			`{"scale": 0.5, "explanation": "shrunk it"}`,
		},
	}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	_, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err)

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "make the logo smaller")
	require.NoError(t, err)
	assert.Equal(t, models.IntentLogoAdjustment, result.Intent)
	require.NotNil(t, result.Render)
	assert.Equal(t, 0.5, result.Render.Logo.Scale)

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, convCtx.Logo.Scale)
}

func TestHandleTurnRecommendationSkipsModel(t *testing.T) {
	client := &scriptedClient{}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "what do you suggest?")
	require.NoError(t, err)
	assert.Equal(t, models.IntentRecommendation, result.Intent)
	assert.NotEmpty(t, result.Response)
	assert.Equal(t, 0, client.calls, "recommendations come straight from the catalog")
}

func TestHandleTurnCatalogOutageStillAnswers(t *testing.T) {
	client := &scriptedClient{}
	fx := newManagerFixture(t, client, errorFetcher{})

	result, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err, "a failed turn must answer, not surface an error")
	require.NotNil(t, result)
	assert.Equal(t, models.IntentProductRequest, result.Intent)
	assert.Equal(t, models.ConfidenceNone, result.Decision.Confidence)
	assert.NotEmpty(t, result.Response)
	assert.Nil(t, result.Render)

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, convCtx.History, "failed turn must not mutate stored context")
}

func TestHandleTurnHistoryIsBounded(t *testing.T) {
	client := &scriptedClient{}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})

	for i := 0; i < models.MaxHistoryTurns; i++ {
		_, err := fx.manager.HandleTurn(context.Background(), "s1", "hello")
		require.NoError(t, err)
	}

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, convCtx.History, models.MaxHistoryTurns)
}

type memoryRecorder struct {
	recorded []string
	purged   []string
}

func (r *memoryRecorder) RecordTurn(ctx context.Context, sessionID, userText string, result *models.TurnResult) error {
	r.recorded = append(r.recorded, userText)
	return nil
}

func (r *memoryRecorder) PurgeSession(ctx context.Context, sessionID string) error {
	r.purged = append(r.purged, sessionID)
	return nil
}

func TestReset(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"primary": "101", "confidence": "high", "reasoning": "tee"}`,
	}}
	fx := newManagerFixture(t, client, &listFetcher{products: managerProducts()})
	recorder := &memoryRecorder{}
	fx.manager.WithRecorder(recorder)

	_, err := fx.manager.HandleTurn(context.Background(), "s1", "I want a cotton tee")
	require.NoError(t, err)
	require.Len(t, recorder.recorded, 1)

	require.NoError(t, fx.manager.Reset(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, recorder.purged, "reset must drop the session's audit trail")

	convCtx, err := fx.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, convCtx.SelectedProductID)
	assert.Empty(t, convCtx.History)
}
