package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"merchify/models"
	"merchify/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache owns the process-wide catalog snapshot. It is constructed once,
// injected into the selectors, and safe for concurrent readers. Refreshes
// are single-flight: concurrent callers observing a stale snapshot share
// one remote fetch.
type Cache struct {
	fetcher   Fetcher
	path      string
	freshness time.Duration
	embedder  Embedder

	mu     sync.RWMutex
	snap   *models.Snapshot
	loaded bool

	group singleflight.Group
}

// NewCache builds a catalog cache persisting to path. The freshness window
// is long-lived (hours/days); a refresh is expensive and must be rare.
func NewCache(fetcher Fetcher, path string, freshness time.Duration) *Cache {
	return &Cache{
		fetcher:   fetcher,
		path:      path,
		freshness: freshness,
	}
}

// WithEmbedder enables semantic search. Callers of Search must not depend
// on which strategy ran.
func (c *Cache) WithEmbedder(e Embedder) *Cache {
	c.embedder = e
	return c
}

// Snapshot returns the current snapshot, refreshing first when none is
// held or the held one is older than the freshness window. If a refresh
// fails but a previous snapshot exists, that snapshot is returned so
// callers keep working against the last known-good catalog.
func (c *Cache) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	c.loadFromDiskOnce()

	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && time.Since(snap.FetchedAt) < c.freshness {
		return snap, nil
	}

	// snap is stale or absent; Refresh re-checks inside the flight.

	if err := c.Refresh(ctx, false); err != nil {
		if snap != nil {
			utils.GetLogger().Warn("Catalog refresh failed, serving previous snapshot",
				zap.Error(err), zap.Time("fetchedAt", snap.FetchedAt))
			return snap, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, nil
}

// Refresh performs a full remote fetch, persists the new snapshot and swaps
// it in atomically. Concurrent refreshes coalesce into a single fetch. On
// failure the previous snapshot is retained and the error returned.
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	c.loadFromDiskOnce()

	if !force && c.isFresh() {
		return nil
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refreshIfStale(ctx, force)
	})
	return err
}

// refreshIfStale re-checks freshness before fetching. A caller that saw a
// stale snapshot may enter the flight only after a previous flight already
// replaced it; fetching again would double the remote load for nothing.
func (c *Cache) refreshIfStale(ctx context.Context, force bool) error {
	if !force && c.isFresh() {
		return nil
	}
	return c.doRefresh(ctx)
}

func (c *Cache) isFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap != nil && time.Since(c.snap.FetchedAt) < c.freshness
}

func (c *Cache) doRefresh(ctx context.Context) error {
	logger := utils.GetLogger()
	start := time.Now()

	products, err := c.fetcher.FetchProducts(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	snap := &models.Snapshot{
		Products:  byID,
		FetchedAt: time.Now(),
		Signature: len(byID),
	}

	if c.embedder != nil {
		c.embedProducts(ctx, snap)
	}

	c.mu.RLock()
	prev := c.snap
	c.mu.RUnlock()
	if prev != nil && prev.Signature == snap.Signature {
		logger.Debug("Catalog refresh found same signature as previous snapshot",
			zap.Int("signature", snap.Signature))
	}

	if err := c.persist(snap); err != nil {
		logger.Warn("Failed to persist catalog snapshot", zap.Error(err))
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	logger.Info("Catalog snapshot refreshed",
		zap.Int("products", len(byID)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Lookup resolves a product id against the current snapshot.
func (c *Cache) Lookup(ctx context.Context, productID string) (models.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return models.Product{}, err
	}
	p, ok := snap.Products[productID]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

// Categories returns the snapshot's products grouped by category.
func (c *Cache) Categories(ctx context.Context) (map[string][]models.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories(), nil
}

// AvailableColors lists the distinct variant colors of one product.
func (c *Cache) AvailableColors(ctx context.Context, productID string) ([]string, error) {
	p, err := c.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.Colors(), nil
}

// Stats reports the held snapshot's product count and fetch time for
// health reporting. A zero time means no snapshot is held.
func (c *Cache) Stats() (int, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0, time.Time{}
	}
	return len(c.snap.Products), c.snap.FetchedAt
}

// loadFromDiskOnce loads the persisted snapshot on first access regardless
// of its age; staleness is corrected by the next refresh, not by refusing
// the load. A malformed file is a cache miss, never fatal.
func (c *Cache) loadFromDiskOnce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.loaded = true

	snap, err := readSnapshotFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			utils.GetLogger().Warn("Ignoring unreadable catalog cache file", zap.Error(err))
		}
		return
	}
	c.snap = snap
	utils.GetLogger().Info("Loaded catalog snapshot from disk",
		zap.Int("products", len(snap.Products)),
		zap.Time("fetchedAt", snap.FetchedAt))
}

func readSnapshotFile(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &CorruptCacheError{Path: path, Err: err}
	}
	if snap.Products == nil || snap.FetchedAt.IsZero() {
		return nil, &CorruptCacheError{Path: path, Err: errMissingFields}
	}
	return &snap, nil
}

// persist writes the snapshot to a temp file and renames it into place so a
// crash mid-write never leaves a half-written cache behind.
func (c *Cache) persist(snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
