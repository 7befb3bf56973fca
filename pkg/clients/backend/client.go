// Package backend wraps the external AgriChain REST backend: orders, schemes,
// reputation, payments and crop-disease prediction. Everything here is a
// boundary contract; the backend owns the business logic.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agrichain/agrichain/internal/config"
)

// API exposes the backend operations used by the application.
type API interface {
	CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error)
	MyOrders(ctx context.Context, token string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, token string, req OrderStatusUpdate) error
	ListSchemes(ctx context.Context, query, category, language string) ([]Scheme, error)
	FarmerReputation(ctx context.Context, farmerEmail string) (*Reputation, error)
	CreatePaymentOrder(ctx context.Context, token string, req PaymentOrderRequest) (*PaymentOrder, error)
	VerifyPayment(ctx context.Context, token string, req PaymentVerification) (*PaymentResult, error)
	DetectDisease(ctx context.Context, filename string, image []byte) (*DiseasePrediction, error)
}

// APIClient is a resty-backed implementation of API.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a backend API client from the provided configuration.
func NewClient(cfg config.BackendConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	ImageURL     string  `json:"image_url,omitempty"`
	FarmerEmail  string  `json:"farmer_email,omitempty"`
	FarmLocation string  `json:"farm_location,omitempty"`
}

// CreateOrderRequest is the order-creation payload.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
}

// Order mirrors the backend order representation.
type Order struct {
	OrderID         string           `json:"order_id"`
	ConsumerName    string           `json:"consumer_name,omitempty"`
	FarmerName      string           `json:"farmer_name,omitempty"`
	Items           []OrderItem      `json:"items,omitempty"`
	TotalAmount     float64          `json:"total_amount"`
	PaymentMethod   string           `json:"payment_method"`
	PaymentStatus   string           `json:"payment_status"`
	OrderStatus     string           `json:"order_status"`
	DeliveryAddress string           `json:"delivery_address,omitempty"`
	OrderDate       string           `json:"order_date,omitempty"`
	TrackingID      string           `json:"tracking_id,omitempty"`
	TrackingUpdates []TrackingUpdate `json:"tracking_updates,omitempty"`
}

// TrackingUpdate is one step of an order's delivery history.
type TrackingUpdate struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// OrderStatusUpdate advances an order through the delivery pipeline.
type OrderStatusUpdate struct {
	OrderID     string `json:"order_id"`
	NewStatus   string `json:"new_status"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Scheme is a government scheme listing.
type Scheme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Link        string `json:"link,omitempty"`
}

// Reputation summarizes a farmer's order history and ratings.
type Reputation struct {
	FarmerEmail   string  `json:"farmer_email"`
	AverageRating float64 `json:"average_rating"`
	TotalOrders   int     `json:"total_orders"`
	Badge         string  `json:"badge,omitempty"`
}

// PaymentOrderRequest asks the backend to open a payment order.
type PaymentOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
}

// PaymentOrder is the gateway order handed back to the payment SDK.
type PaymentOrder struct {
	PaymentOrderID string  `json:"payment_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"key_id,omitempty"`
}

// PaymentVerification forwards the signed confirmation from the payment SDK.
type PaymentVerification struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
	OurOrderID       string `json:"our_order_id"`
}

// PaymentResult is the backend's verdict on a payment confirmation.
type PaymentResult struct {
	Verified  bool   `json:"verified"`
	PaymentID string `json:"payment_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// DiseasePrediction is the classification result for a crop image.
type DiseasePrediction struct {
	Disease    string   `json:"disease"`
	Confidence float64  `json:"confidence"`
	Severity   string   `json:"severity,omitempty"`
	Treatment  string   `json:"treatment,omitempty"`
	Symptoms   []string `json:"symptoms,omitempty"`
}

// apiError represents an error payload from the backend.
type apiError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (e *apiError) message() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}

// CreateOrder places a new order on behalf of the authenticated consumer.
func (c *APIClient) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) (*Order, error) {
	result := new(Order)
	if err := c.post(ctx, token, "/orders/create", req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// MyOrders lists the authenticated user's orders.
func (c *APIClient) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var result struct {
		Orders []Order `json:"orders"`
	}
	apiErr := new(apiError)

	resp, err := c.request(ctx, token).
		SetResult(&result).
		SetError(apiErr).
		Get("/orders/my-orders")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("backend error: code=%d, message=%s", resp.StatusCode(), apiErr.message())
	}

	return result.Orders, nil
}

// UpdateOrderStatus advances an order's delivery status.
func (c *APIClient) UpdateOrderStatus(ctx context.Context, token string, req OrderStatusUpdate) error {
	return c.post(ctx, token, "/orders/update-status", req, nil)
}

// ListSchemes fetches government scheme listings, optionally filtered.
func (c *APIClient) ListSchemes(ctx context.Context, query, category, language string) ([]Scheme, error) {
	var result struct {
		Schemes []Scheme `json:"schemes"`
	}
	apiErr := new(apiError)

	resp, err := c.request(ctx, "").
		SetQueryParams(map[string]string{
			"query":    query,
			"category": category,
			"language": language,
		}).
		SetResult(&result).
		SetError(apiErr).
		Get("/schemes")
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("backend error: code=%d, message=%s", resp.StatusCode(), apiErr.message())
	}

	return result.Schemes, nil
}

// FarmerReputation fetches the reputation summary for a farmer.
func (c *APIClient) FarmerReputation(ctx context.Context, farmerEmail string) (*Reputation, error) {
	result := new(Reputation)
	apiErr := new(apiError)

	resp, err := c.request(ctx, "").
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/farmers/%s/reputation", farmerEmail))
	if err != nil {
		return nil, fmt.Errorf("farmer reputation: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("backend error: code=%d, message=%s", resp.StatusCode(), apiErr.message())
	}

	return result, nil
}

// CreatePaymentOrder opens a payment order with the gateway via the backend.
func (c *APIClient) CreatePaymentOrder(ctx context.Context, token string, req PaymentOrderRequest) (*PaymentOrder, error) {
	result := new(PaymentOrder)
	if err := c.post(ctx, token, "/payments/create-order", req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyPayment forwards the signed payment confirmation for verification.
func (c *APIClient) VerifyPayment(ctx context.Context, token string, req PaymentVerification) (*PaymentResult, error) {
	result := new(PaymentResult)
	if err := c.post(ctx, token, "/payments/verify", req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DetectDisease uploads a crop image for classification.
func (c *APIClient) DetectDisease(ctx context.Context, filename string, image []byte) (*DiseasePrediction, error) {
	result := new(DiseasePrediction)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		SetResult(result).
		SetError(apiErr).
		Post("/predict")
	if err != nil {
		return nil, fmt.Errorf("detect disease: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("backend error: code=%d, message=%s", resp.StatusCode(), apiErr.message())
	}

	return result, nil
}

func (c *APIClient) post(ctx context.Context, token, path string, body, result any) error {
	apiErr := new(apiError)

	req := c.request(ctx, token).
		SetBody(body).
		SetError(apiErr)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("backend error: code=%d, message=%s", resp.StatusCode(), apiErr.message())
	}
	return nil
}

func (c *APIClient) request(ctx context.Context, token string) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}
