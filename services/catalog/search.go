package catalog

import (
	"context"
	"math"
	"sort"
	"strings"

	"merchify/models"
	"merchify/utils"

	"go.uber.org/zap"
)

// Embedder produces a vector for a piece of text. When configured on the
// cache, Search ranks by vector similarity and falls back to lexical
// scoring if embedding fails; callers never see which strategy ran.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Search returns up to limit products ranked by relevance to the query.
func (c *Cache) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	if c.embedder != nil {
		if results, ok := c.semanticSearch(ctx, snap, query, limit); ok {
			return results, nil
		}
	}
	return lexicalSearch(snap, query, limit), nil
}

type scoredProduct struct {
	product models.Product
	score   float64
}

// lexicalSearch scores products by tiered keyword matching: exact title,
// title substring, category, tags, description, strongest tier wins.
func lexicalSearch(snap *models.Snapshot, query string, limit int) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var scored []scoredProduct
	for _, p := range snap.Products {
		s := scoreProduct(p, q)
		if s > 0 {
			scored = append(scored, scoredProduct{product: p, score: s})
		}
	}
	return rankTop(scored, limit)
}

func scoreProduct(p models.Product, query string) float64 {
	title := strings.ToLower(p.Title)
	if title == query {
		return 100
	}
	if strings.Contains(title, query) || strings.Contains(query, title) {
		return 80
	}
	if strings.Contains(query, strings.ToLower(p.Category)) {
		return 60
	}
	for _, tag := range p.Tags {
		if strings.Contains(query, strings.ToLower(tag)) {
			return 40
		}
	}
	if strings.Contains(strings.ToLower(p.Description), query) {
		return 20
	}
	return 0
}

// semanticSearch ranks by cosine similarity between the query embedding and
// product embeddings computed at refresh time. Returns ok=false when the
// query cannot be embedded or no product carries an embedding, in which
// case the caller silently falls back to lexical scoring.
func (c *Cache) semanticSearch(ctx context.Context, snap *models.Snapshot, query string, limit int) ([]models.Product, bool) {
	qv, err := c.embedder.Embed(ctx, query)
	if err != nil {
		utils.GetLogger().Debug("Query embedding failed, falling back to lexical search", zap.Error(err))
		return nil, false
	}

	var scored []scoredProduct
	for _, p := range snap.Products {
		if len(p.Embedding) == 0 {
			continue
		}
		sim := cosineSimilarity(qv, p.Embedding)
		if sim > 0 {
			scored = append(scored, scoredProduct{product: p, score: sim})
		}
	}
	if len(scored) == 0 {
		return nil, false
	}
	return rankTop(scored, limit), true
}

// embedProducts computes embeddings for the snapshot's products, best
// effort. A product whose embedding fails simply stays lexical-only.
func (c *Cache) embedProducts(ctx context.Context, snap *models.Snapshot) {
	logger := utils.GetLogger()
	embedded := 0
	for id, p := range snap.Products {
		text := p.Title + ". " + p.Description
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			logger.Debug("Product embedding failed", zap.String("product", id), zap.Error(err))
			continue
		}
		p.Embedding = vec
		snap.Products[id] = p
		embedded++
	}
	logger.Info("Embedded catalog products", zap.Int("embedded", embedded), zap.Int("total", len(snap.Products)))
}

// rankTop sorts by score descending with a stable title tie-break so equal
// scores rank deterministically across map iteration orders.
func rankTop(scored []scoredProduct, limit int) []models.Product {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].product.Title != scored[j].product.Title {
			return scored[i].product.Title < scored[j].product.Title
		}
		return scored[i].product.ID < scored[j].product.ID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]models.Product, len(scored))
	for i, s := range scored {
		out[i] = s.product
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
