package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// OrderLineRequest is one cart line. Price and name are the client's
// snapshot of the catalog.
type OrderLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Name      string           `json:"name"`
}

// DeliveryInfoPayload carries the structured delivery details.
type DeliveryInfoPayload struct {
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Comments string `json:"comments"`
}

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Lines             []OrderLineRequest  `json:"lines"`
	Delivery          DeliveryInfoPayload `json:"delivery"`
	DeliveryAddressID *string             `json:"delivery_address_id"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status int `json:"status"`
}

// AssignCourierRequest payload.
type AssignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

// OrderLineResponse is a frozen order line.
type OrderLineResponse struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	LineSubtotal string `json:"line_subtotal"`
}

// OrderResponse is an order with its lines.
type OrderResponse struct {
	ID                string                  `json:"id"`
	OrderCode         string                  `json:"order_code"`
	CustomerID        string                  `json:"customer_id"`
	CourierID         *string                 `json:"courier_id"`
	DeliveryAddressID *string                 `json:"delivery_address_id"`
	Status            domain.StatusMetadata   `json:"status"`
	Subtotal          string                  `json:"subtotal"`
	ShippingCost      string                  `json:"shipping_cost"`
	Total             string                  `json:"total"`
	Delivery          DeliveryInfoPayload     `json:"delivery"`
	Lines             []OrderLineResponse     `json:"lines"`
	AllowedActions    []domain.StatusMetadata `json:"allowed_actions"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	DeliveredAt       *time.Time              `json:"delivered_at"`
}

// OrderHistoryResponse is one status audit entry.
type OrderHistoryResponse struct {
	ID         string             `json:"id"`
	FromStatus *int               `json:"from_status"`
	ToStatus   int                `json:"to_status"`
	ActorKind  domain.BackingKind `json:"actor_kind"`
	ActorID    *string            `json:"actor_id"`
	CreatedAt  time.Time          `json:"created_at"`
}

// OrderStatsResponse holds dashboard counts keyed by status key.
type OrderStatsResponse struct {
	ByStatus       map[string]int `json:"by_status"`
	DeliveredToday int            `json:"delivered_today"`
}
