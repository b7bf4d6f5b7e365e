package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated         EventType = "order_created"
	EventOrderStatusChanged   EventType = "order_status_changed"
	EventOrderCourierAssigned EventType = "order_courier_assigned"

	EventPasswordResetRequested EventType = "password_reset_requested"
)

// OrderEventTypes lists every order event.
var OrderEventTypes = []EventType{EventOrderCreated, EventOrderStatusChanged, EventOrderCourierAssigned}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind domain.BackingKind `json:"kind"`
	ID   *string            `json:"id,omitempty"`
	Role domain.Role        `json:"role,omitempty"`
}

// ActorFrom describes the identity that caused an event.
func ActorFrom(id domain.Identity) Actor {
	if id == nil {
		return Actor{Kind: domain.BackingNone}
	}
	recordID := id.BackingRecordID()
	return Actor{Kind: id.BackingKind(), ID: &recordID, Role: id.Role()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id"`
	OrderCode string      `json:"order_code"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	CustomerID string          `json:"customer_id"`
	LineCount  int             `json:"line_count"`
	Total      decimal.Decimal `json:"total"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// OrderCourierAssignedPayload payload.
type OrderCourierAssignedPayload struct {
	CourierID string `json:"courier_id"`
}

// PasswordResetRequestedPayload carries what a mail sender needs. The token
// never leaves the process in serialized form.
type PasswordResetRequestedPayload struct {
	Email     string             `json:"email"`
	Kind      domain.BackingKind `json:"kind"`
	Token     string             `json:"-"`
	ExpiresAt time.Time          `json:"expires_at"`
}
