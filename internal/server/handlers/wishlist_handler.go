package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/registry/wishlist"
)

// WishlistHandler exposes the wishlist registry over HTTP.
type WishlistHandler struct {
	registry *wishlist.Registry
	logger   *zap.Logger
}

// NewWishlistHandler constructs the HTTP handler adapter for the wishlist.
func NewWishlistHandler(registry *wishlist.Registry, logger *zap.Logger) *WishlistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistHandler{registry: registry, logger: logger}
}

// List returns the full wishlist.
func (h *WishlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetWishlist(c.Request.Context()))
}

// Add inserts a product into the wishlist; duplicates are rejected.
func (h *WishlistHandler) Add(c *gin.Context) {
	var entry models.WishlistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.logger.Warn("invalid wishlist payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if entry.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}

	if !h.registry.AddToWishlist(c.Request.Context(), entry) {
		c.JSON(http.StatusConflict, gin.H{"error": "already in wishlist"})
		return
	}

	c.Status(http.StatusCreated)
}

// Remove deletes a wishlist entry by product id.
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID := c.Param("productId")

	if !h.registry.RemoveFromWishlist(c.Request.Context(), productID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not in wishlist"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Contains reports wishlist membership for a product id.
func (h *WishlistHandler) Contains(c *gin.Context) {
	productID := c.Param("productId")
	c.JSON(http.StatusOK, gin.H{
		"productId": productID,
		"contains":  h.registry.IsInWishlist(c.Request.Context(), productID),
	})
}

// Count returns the number of wishlist entries.
func (h *WishlistHandler) Count(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.registry.Count(c.Request.Context())})
}

// Clear removes the entire wishlist.
func (h *WishlistHandler) Clear(c *gin.Context) {
	h.registry.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}
