package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrichain/agrichain/internal/server/handlers"
	"github.com/agrichain/agrichain/internal/service/dashboard"
)

// New wires the Gin engine with required routes and middlewares.
func New(products *handlers.ProductHandler, wishlist *handlers.WishlistHandler, orders *handlers.OrderHandler, dashboardSvc *dashboard.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/products", products.Register)
	r.GET("/products", products.List)
	r.GET("/products/:trackingId", products.Get)
	r.PATCH("/products/:trackingId", products.Patch)
	r.POST("/products/:trackingId/list", products.ListInMarketplace)
	r.DELETE("/products/:trackingId", products.Delete)
	r.GET("/marketplace", products.Marketplace)

	r.GET("/wishlist", wishlist.List)
	r.POST("/wishlist", wishlist.Add)
	r.DELETE("/wishlist", wishlist.Clear)
	r.GET("/wishlist/count", wishlist.Count)
	r.GET("/wishlist/:productId/contains", wishlist.Contains)
	r.DELETE("/wishlist/:productId", wishlist.Remove)

	r.POST("/orders", orders.CreateOrder)
	r.GET("/orders", orders.MyOrders)
	r.PUT("/orders/:orderId/status", orders.UpdateStatus)
	r.GET("/schemes", orders.Schemes)
	r.GET("/farmers/:farmerEmail/reputation", orders.Reputation)
	r.POST("/payments/create-order", orders.CreatePaymentOrder)
	r.POST("/payments/verify", orders.VerifyPayment)
	r.POST("/disease/detect", orders.DetectDisease)

	r.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, dashboardSvc.Snapshot())
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
