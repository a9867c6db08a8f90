// File: service/ai/contextStore_test.go
package ai

import (
	"context"
	"testing"
	"time"

	"merchify/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisContextStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisContextStore(rdb, time.Hour), mr
}

func TestContextStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	convCtx := models.NewConversationContext("s1")
	convCtx.SelectedProductID = "101"
	convCtx.SelectedColor = "Navy"
	convCtx.AppendTurn("user", "I want a tee")

	require.NoError(t, store.Set(ctx, "s1", convCtx))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "101", got.SelectedProductID)
	assert.Equal(t, "Navy", got.SelectedColor)
	require.Len(t, got.History, 1)
	assert.Equal(t, "I want a tee", got.History[0].Content)
}

func TestContextStoreMissingSessionReturnsFreshContext(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLogoSettings(), got.Logo)
	assert.Empty(t, got.History)
}

func TestContextStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	convCtx := models.NewConversationContext("s1")
	convCtx.SelectedProductID = "101"
	require.NoError(t, store.Set(ctx, "s1", convCtx))
	require.NoError(t, store.Clear(ctx, "s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.SelectedProductID)
}

func TestContextStoreEntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", models.NewConversationContext("s1")))
	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.History)
	assert.Equal(t, "s1", got.SessionID)
}
