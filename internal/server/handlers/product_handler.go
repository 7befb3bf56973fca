package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/registry/product"
)

// ProductHandler exposes the product registry over HTTP.
type ProductHandler struct {
	registry *product.Registry
	logger   *zap.Logger
}

// NewProductHandler constructs the HTTP handler adapter for products.
func NewProductHandler(registry *product.Registry, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{registry: registry, logger: logger}
}

// RegisterProductRequest is the product registration payload. Identity and
// registration timestamp are assigned server-side.
type RegisterProductRequest struct {
	ProductName  string `json:"productName" binding:"required"`
	Category     string `json:"category" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
	Unit         string `json:"unit" binding:"required"`
	FarmLocation string `json:"farmLocation" binding:"required"`
	FarmerName   string `json:"farmerName" binding:"required"`
	FarmerEmail  string `json:"farmerEmail"`
	FarmerPhone  string `json:"farmerPhone" binding:"required"`
	Description  string `json:"description"`
}

// Register creates a new registered product with a fresh tracking id.
func (h *ProductHandler) Register(c *gin.Context) {
	var req RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid product registration payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	registered := h.registry.NewRegistration(models.RegisteredProduct{
		ProductName:  req.ProductName,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		FarmLocation: req.FarmLocation,
		FarmerName:   req.FarmerName,
		FarmerEmail:  req.FarmerEmail,
		FarmerPhone:  req.FarmerPhone,
		Description:  req.Description,
	})

	if err := h.registry.SaveProduct(c.Request.Context(), registered); err != nil {
		h.logger.Error("failed saving product", zap.String("tracking_id", registered.TrackingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to register product"})
		return
	}

	c.JSON(http.StatusCreated, registered)
}

// List returns the full product collection.
func (h *ProductHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetAllProducts(c.Request.Context()))
}

// Get looks a product up by tracking id.
func (h *ProductHandler) Get(c *gin.Context) {
	trackingID := c.Param("trackingId")

	p, ok := h.registry.GetProductByTrackingID(c.Request.Context(), trackingID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Patch applies a partial update to the mutable commerce fields.
func (h *ProductHandler) Patch(c *gin.Context) {
	trackingID := c.Param("trackingId")

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid product patch payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	found, err := h.registry.UpdateProduct(c.Request.Context(), trackingID, patch)
	if err != nil {
		h.logger.Error("failed updating product", zap.String("tracking_id", trackingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to update product"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	p, _ := h.registry.GetProductByTrackingID(c.Request.Context(), trackingID)
	c.JSON(http.StatusOK, p)
}

// ListInMarketplaceRequest assigns a price when listing a product.
type ListInMarketplaceRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

// ListInMarketplace prices a product and makes it visible in the marketplace.
func (h *ProductHandler) ListInMarketplace(c *gin.Context) {
	trackingID := c.Param("trackingId")

	var req ListInMarketplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid listing payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	found, err := h.registry.ListInMarketplace(c.Request.Context(), trackingID, req.Price)
	if err != nil {
		h.logger.Error("failed listing product", zap.String("tracking_id", trackingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to list product"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a product by tracking id.
func (h *ProductHandler) Delete(c *gin.Context) {
	trackingID := c.Param("trackingId")

	found, err := h.registry.DeleteProduct(c.Request.Context(), trackingID)
	if err != nil {
		h.logger.Error("failed deleting product", zap.String("tracking_id", trackingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to delete product"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Marketplace returns the derived marketplace view.
func (h *ProductHandler) Marketplace(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetMarketplaceProducts(c.Request.Context()))
}
