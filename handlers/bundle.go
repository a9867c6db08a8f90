// File: merchify/handlers/handlerBundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoints
	HandleChat    gin.HandlerFunc
	ResetSession  gin.HandlerFunc
	GetSessionLog gin.HandlerFunc

	// Catalog endpoints
	GetProduct       gin.HandlerFunc
	GetProductColors gin.HandlerFunc
	SearchProducts   gin.HandlerFunc
	GetCategories    gin.HandlerFunc
	RefreshCatalog   gin.HandlerFunc
}
