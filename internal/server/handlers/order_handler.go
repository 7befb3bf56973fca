package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrichain/agrichain/pkg/clients/backend"
)

// OrderHandler proxies order, scheme, payment and disease-detection calls to
// the external backend. No business logic lives here; the bearer token is
// passed through untouched.
type OrderHandler struct {
	api    backend.API
	logger *zap.Logger
}

// NewOrderHandler constructs the proxy handler for the external backend.
func NewOrderHandler(api backend.API, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{api: api, logger: logger}
}

// CreateOrder forwards an order-creation request.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req backend.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid order payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.api.CreateOrder(c.Request.Context(), bearerToken(c), req)
	if err != nil {
		h.logger.Error("failed creating order", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// MyOrders forwards the order listing request for the authenticated user.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.api.MyOrders(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.logger.Error("failed listing orders", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateStatus forwards a delivery-status transition.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req backend.OrderStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid status payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.OrderID = c.Param("orderId")

	if err := h.api.UpdateOrderStatus(c.Request.Context(), bearerToken(c), req); err != nil {
		h.logger.Error("failed updating order status", zap.String("order_id", req.OrderID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to update order status"})
		return
	}

	c.Status(http.StatusOK)
}

// Schemes forwards the government scheme listing request.
func (h *OrderHandler) Schemes(c *gin.Context) {
	schemes, err := h.api.ListSchemes(
		c.Request.Context(),
		c.Query("query"),
		c.DefaultQuery("category", "all"),
		c.DefaultQuery("language", "en"),
	)
	if err != nil {
		h.logger.Error("failed listing schemes", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to list schemes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schemes": schemes})
}

// Reputation forwards a farmer reputation lookup.
func (h *OrderHandler) Reputation(c *gin.Context) {
	rep, err := h.api.FarmerReputation(c.Request.Context(), c.Param("farmerEmail"))
	if err != nil {
		h.logger.Error("failed fetching reputation", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to fetch reputation"})
		return
	}

	c.JSON(http.StatusOK, rep)
}

// CreatePaymentOrder forwards a payment-order creation request.
func (h *OrderHandler) CreatePaymentOrder(c *gin.Context) {
	var req backend.PaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid payment order payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.api.CreatePaymentOrder(c.Request.Context(), bearerToken(c), req)
	if err != nil {
		h.logger.Error("failed creating payment order", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create payment order"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// VerifyPayment forwards the signed payment confirmation.
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	var req backend.PaymentVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid payment verification payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.api.VerifyPayment(c.Request.Context(), bearerToken(c), req)
	if err != nil {
		h.logger.Error("failed verifying payment", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to verify payment"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DetectDisease forwards a crop image to the classifier backend.
func (h *OrderHandler) DetectDisease(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed opening uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read image"})
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed reading uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read image"})
		return
	}

	prediction, err := h.api.DetectDisease(c.Request.Context(), fileHeader.Filename, image)
	if err != nil {
		h.logger.Error("failed classifying image", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to classify image"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
