package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cartscout/backend/internal/domain"
)

// ShoppingService is the use case surface the HTTP layer depends on
type ShoppingService interface {
	Search(ctx context.Context, query string) (*domain.ShoppingResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	shoppingService ShoppingService
}

// NewHandler creates a new HTTP handler
func NewHandler(shoppingService ShoppingService) *Handler {
	return &Handler{
		shoppingService: shoppingService,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cartscout-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles shopping search requests
func (h *Handler) SearchProducts(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body. Expected: {\"query\": \"product to search for\"}",
		})
		return
	}

	result, err := h.shoppingService.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.handleSearchError(c, req.Query, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleSearchError maps use case errors to HTTP status codes
func (h *Handler) handleSearchError(c *gin.Context, query string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query must not be empty",
		})
	case errors.Is(err, domain.ErrMissingCredential):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product search is not configured on this server",
		})
	case errors.Is(err, domain.ErrNoProducts):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No products found for this query",
		})
	default:
		log.Printf("[HTTP] search failed for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error while searching for products",
		})
	}
}
