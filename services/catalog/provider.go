package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"merchify/models"
	"merchify/utils"

	"go.uber.org/zap"
)

// Fetcher is the catalog provider boundary. The remote API is paginated and
// slow; the cache is its sole caller.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// ProviderClient talks to the upstream product catalog API.
type ProviderClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewProviderClient builds a client with a bounded request timeout.
func NewProviderClient(baseURL, token string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// rawVariant mirrors the provider's variant record.
type rawVariant struct {
	ID      json.Number       `json:"id"`
	Title   string            `json:"title"`
	Options map[string]string `json:"options"`
	Price   int               `json:"price"`
	IsAvail *bool             `json:"is_available"`
}

// rawProduct mirrors the provider's product record. The shape is loose on
// purpose; normalization into models.Product happens here at the boundary so
// downstream components never see upstream schema drift.
type rawProduct struct {
	ID          json.Number      `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Tags        []string         `json:"tags"`
	Variants    []rawVariant     `json:"variants"`
	Providers   []map[string]any `json:"print_providers"`
}

type productPage struct {
	Data        []rawProduct `json:"data"`
	CurrentPage int          `json:"current_page"`
	LastPage    int          `json:"last_page"`
}

// FetchProducts walks every page of the provider catalog and returns the
// normalized product list. Each page request is retried once on transport
// failure before the whole fetch is reported as failed.
func (pc *ProviderClient) FetchProducts(ctx context.Context) ([]models.Product, error) {
	logger := utils.GetLogger()

	var products []models.Product
	page := 1
	for {
		pg, err := pc.fetchPage(ctx, page)
		if err != nil {
			logger.Warn("Catalog page fetch failed, retrying once", zap.Int("page", page), zap.Error(err))
			pg, err = pc.fetchPage(ctx, page)
			if err != nil {
				return nil, &TransportError{Op: fmt.Sprintf("fetch page %d", page), Err: err}
			}
		}

		for _, raw := range pg.Data {
			p, ok := normalizeProduct(raw)
			if !ok {
				logger.Warn("Skipping malformed product record", zap.String("id", raw.ID.String()))
				continue
			}
			products = append(products, p)
		}

		if pg.LastPage == 0 || pg.CurrentPage >= pg.LastPage || len(pg.Data) == 0 {
			break
		}
		page++
	}
	return products, nil
}

func (pc *ProviderClient) fetchPage(ctx context.Context, page int) (*productPage, error) {
	url := fmt.Sprintf("%s/catalog/products.json?page=%d", pc.baseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+pc.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "merchify-catalog")

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var pg productPage
	if err := json.NewDecoder(resp.Body).Decode(&pg); err != nil {
		return nil, err
	}
	return &pg, nil
}

// normalizeProduct converts a provider record into the fixed catalog shape.
// Records without a stable id are dropped.
func normalizeProduct(raw rawProduct) (models.Product, bool) {
	id := raw.ID.String()
	if id == "" || raw.Title == "" {
		return models.Product{}, false
	}

	category := raw.Category
	if category == "" {
		category = CategorizeTitle(raw.Title)
	}

	tags := raw.Tags
	if len(tags) == 0 {
		tags = ExtractTags(raw.Title)
	}

	variants := make([]models.Variant, 0, len(raw.Variants))
	seen := make(map[string]struct{}, len(raw.Variants))
	for _, rv := range raw.Variants {
		vid := rv.ID.String()
		if vid == "" {
			continue
		}
		// Variant ids must be unique within the product.
		if _, dup := seen[vid]; dup {
			continue
		}
		seen[vid] = struct{}{}

		available := true
		if rv.IsAvail != nil {
			available = *rv.IsAvail
		}
		variants = append(variants, models.Variant{
			ID:        vid,
			Title:     rv.Title,
			Color:     CleanColor(rv.Options["color"]),
			Size:      rv.Options["size"],
			Price:     rv.Price,
			Available: available,
		})
	}

	return models.Product{
		ID:          id,
		Title:       raw.Title,
		Description: firstNonEmpty(raw.Description, raw.Title),
		Category:    category,
		Tags:        tags,
		Variants:    variants,
		Providers:   raw.Providers,
		Available:   true,
	}, true
}

// CleanColor strips provider suffixes like "Navy / Heather" or
// "Black patch" down to the primary color name.
func CleanColor(color string) string {
	color = strings.TrimSpace(strings.SplitN(color, "/", 2)[0])
	color = strings.TrimSpace(strings.SplitN(color, " patch", 2)[0])
	return color
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
