package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain/internal/bus"
	"github.com/agrichain/agrichain/internal/domain/models"
	"github.com/agrichain/agrichain/internal/registry/product"
	"github.com/agrichain/agrichain/internal/registry/wishlist"
	"github.com/agrichain/agrichain/internal/repository/memstore"
	"github.com/agrichain/agrichain/internal/server/handlers"
	"github.com/agrichain/agrichain/internal/server/router"
	"github.com/agrichain/agrichain/internal/service/dashboard"
	"github.com/agrichain/agrichain/pkg/clients/backend"
)

// stubAPI fakes the external backend for proxy-route tests.
type stubAPI struct {
	lastToken    string
	createdOrder *backend.Order
	schemes      []backend.Scheme
	failing      bool
}

func (s *stubAPI) CreateOrder(_ context.Context, token string, _ backend.CreateOrderRequest) (*backend.Order, error) {
	s.lastToken = token
	if s.failing {
		return nil, errBackend
	}
	return s.createdOrder, nil
}

func (s *stubAPI) MyOrders(_ context.Context, token string) ([]backend.Order, error) {
	s.lastToken = token
	return []backend.Order{{OrderID: "ORD-2025-001"}}, nil
}

func (s *stubAPI) UpdateOrderStatus(_ context.Context, token string, _ backend.OrderStatusUpdate) error {
	s.lastToken = token
	return nil
}

func (s *stubAPI) ListSchemes(context.Context, string, string, string) ([]backend.Scheme, error) {
	return s.schemes, nil
}

func (s *stubAPI) FarmerReputation(context.Context, string) (*backend.Reputation, error) {
	return &backend.Reputation{AverageRating: 4.5}, nil
}

func (s *stubAPI) CreatePaymentOrder(context.Context, string, backend.PaymentOrderRequest) (*backend.PaymentOrder, error) {
	return &backend.PaymentOrder{PaymentOrderID: "pay_123"}, nil
}

func (s *stubAPI) VerifyPayment(context.Context, string, backend.PaymentVerification) (*backend.PaymentResult, error) {
	return &backend.PaymentResult{Verified: true}, nil
}

func (s *stubAPI) DetectDisease(context.Context, string, []byte) (*backend.DiseasePrediction, error) {
	return &backend.DiseasePrediction{Disease: "healthy", Confidence: 0.99}, nil
}

var errBackend = errors.New("backend unavailable")

func newTestServer(t *testing.T, api backend.API) *gin.Engine {
	t.Helper()

	store := memstore.NewStore()
	b := bus.New(nil)
	products := product.NewRegistry(store, b, nil)
	wishes := wishlist.NewRegistry(store, b, nil)
	dashboardSvc := dashboard.NewService(products, wishes, nil)
	unwatch := dashboardSvc.Watch(b)
	t.Cleanup(unwatch)

	engine := router.New(
		handlers.NewProductHandler(products, nil),
		handlers.NewWishlistHandler(wishes, nil),
		handlers.NewOrderHandler(api, nil),
		dashboardSvc,
		nil,
	)
	return engine
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	engine := newTestServer(t, &stubAPI{})

	rec := doJSON(engine, http.MethodPost, "/products", `{
		"productName": "Rice",
		"category": "grains",
		"quantity": "100",
		"unit": "kg",
		"farmLocation": "Village Farm, Punjab",
		"farmerName": "Rajan Singh",
		"farmerPhone": "+91 9876543210"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered models.RegisteredProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Regexp(t, `^AGR-\d{4}-[A-Z0-9]{6}$`, registered.TrackingID)

	// Not listed yet: marketplace is empty.
	rec = doJSON(engine, http.MethodGet, "/marketplace", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = doJSON(engine, http.MethodPost, "/products/"+registered.TrackingID+"/list", `{"price": 85}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/marketplace", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var marketplace []models.RegisteredProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marketplace))
	require.Len(t, marketplace, 1)
	require.NotNil(t, marketplace[0].Price)
	assert.Equal(t, 85.0, *marketplace[0].Price)

	// The dashboard snapshot follows via the change bridge.
	rec = doJSON(engine, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Marketplace, 1)

	rec = doJSON(engine, http.MethodDelete, "/products/"+registered.TrackingID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/products/"+registered.TrackingID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterProduct_MissingFieldsRejected(t *testing.T) {
	engine := newTestServer(t, &stubAPI{})

	rec := doJSON(engine, http.MethodPost, "/products", `{"productName": "Rice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchUnknownProductIs404(t *testing.T) {
	engine := newTestServer(t, &stubAPI{})

	rec := doJSON(engine, http.MethodPatch, "/products/AGR-2025-NOPE00", `{"price": 10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistOverHTTP(t *testing.T) {
	engine := newTestServer(t, &stubAPI{})

	entry := `{"productId": "AGR-2025-TOMATO", "productName": "Organic Tomatoes", "price": 60, "unit": "kg"}`

	rec := doJSON(engine, http.MethodPost, "/wishlist", entry)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate add signals conflict.
	rec = doJSON(engine, http.MethodPost, "/wishlist", entry)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/wishlist/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 1}`, rec.Body.String())

	rec = doJSON(engine, http.MethodGet, "/wishlist/AGR-2025-TOMATO/contains", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productId": "AGR-2025-TOMATO", "contains": true}`, rec.Body.String())

	rec = doJSON(engine, http.MethodDelete, "/wishlist/AGR-2025-NOPE00", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(engine, http.MethodDelete, "/wishlist/AGR-2025-TOMATO", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(engine, http.MethodGet, "/wishlist/count", "")
	assert.JSONEq(t, `{"count": 0}`, rec.Body.String())
}

func TestOrderProxyForwardsBearerToken(t *testing.T) {
	api := &stubAPI{createdOrder: &backend.Order{OrderID: "ORD-2025-042"}}
	engine := newTestServer(t, api)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{
		"items": [{"product_id": "p1", "product_name": "Rice", "quantity": 2, "unit": "kg", "price_per_unit": 85}],
		"total_amount": 170,
		"shipping_address": "123 Green Street",
		"payment_method": "COD"
	}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "token-123", api.lastToken)

	var order backend.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "ORD-2025-042", order.OrderID)
}

func TestOrderProxyBackendFailureIsBadGateway(t *testing.T) {
	engine := newTestServer(t, &stubAPI{failing: true})

	rec := doJSON(engine, http.MethodPost, "/orders", `{"items": [], "total_amount": 0, "shipping_address": "x", "payment_method": "COD"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSchemesProxy(t *testing.T) {
	engine := newTestServer(t, &stubAPI{schemes: []backend.Scheme{{ID: "pm-kisan", Name: "PM-KISAN"}}})

	rec := doJSON(engine, http.MethodGet, "/schemes?category=subsidy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PM-KISAN")
}
