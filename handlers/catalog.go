package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"merchify/services/catalog"
	"merchify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	cache *catalog.Cache
}

func NewCatalogHandler(cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

// GetProduct returns one product by catalog id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.cache.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		utils.GetLogger().Error("Product lookup failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts returns products ranked by relevance to ?q=.
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	products, err := h.cache.Search(c.Request.Context(), query, limit)
	if err != nil {
		utils.GetLogger().Error("Catalog search failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "products": products})
}

// GetProductColors returns the distinct variant colors of one product.
func (h *CatalogHandler) GetProductColors(c *gin.Context) {
	id := c.Param("id")
	colors, err := h.cache.AvailableColors(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		utils.GetLogger().Error("Color listing failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "colors": colors})
}

// GetCategories returns products grouped by category.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	grouped, err := h.cache.Categories(c.Request.Context())
	if err != nil {
		utils.GetLogger().Error("Category listing failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, grouped)
}

// RefreshCatalog forces a snapshot refresh.
func (h *CatalogHandler) RefreshCatalog(c *gin.Context) {
	if err := h.cache.Refresh(c.Request.Context(), true); err != nil {
		utils.GetLogger().Error("Forced catalog refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Refresh failed, previous snapshot retained"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
