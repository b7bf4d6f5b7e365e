package domain

import (
	"fmt"

	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// OrderStatus is the integer status code persisted in orders.status_code.
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 1
	OrderStatusPaid      OrderStatus = 2
	OrderStatusPreparing OrderStatus = 3
	OrderStatusReady     OrderStatus = 4
	OrderStatusInTransit OrderStatus = 5
	OrderStatusDelivered OrderStatus = 6
	OrderStatusCancelled OrderStatus = 7
)

// StatusMetadata is the display and lifecycle data of a status code.
type StatusMetadata struct {
	Code     OrderStatus `json:"code"`
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Color    string      `json:"color"`
	Terminal bool        `json:"terminal"`
}

var statusTable = map[OrderStatus]StatusMetadata{
	OrderStatusPending:   {Code: OrderStatusPending, Key: "pending", Label: "Pendiente", Color: "yellow"},
	OrderStatusPaid:      {Code: OrderStatusPaid, Key: "paid", Label: "Pagado", Color: "blue"},
	OrderStatusPreparing: {Code: OrderStatusPreparing, Key: "preparing", Label: "En preparación", Color: "indigo"},
	OrderStatusReady:     {Code: OrderStatusReady, Key: "ready", Label: "Listo para despacho", Color: "purple"},
	OrderStatusInTransit: {Code: OrderStatusInTransit, Key: "in_transit", Label: "En camino", Color: "orange"},
	OrderStatusDelivered: {Code: OrderStatusDelivered, Key: "delivered", Label: "Entregado", Color: "green", Terminal: true},
	OrderStatusCancelled: {Code: OrderStatusCancelled, Key: "cancelled", Label: "Cancelado", Color: "red", Terminal: true},
}

// OrderStatuses lists every status in lifecycle order, Cancelled last.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status code.
func (s OrderStatus) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

// Terminal reports whether no transition may leave s.
func (s OrderStatus) Terminal() bool {
	return statusTable[s].Terminal
}

// Meta returns the canonical metadata for s.
func (s OrderStatus) Meta() StatusMetadata {
	if meta, ok := statusTable[s]; ok {
		return meta
	}
	return StatusMetadata{Code: s, Key: "unknown", Label: fmt.Sprintf("Estado %d", int(s)), Color: "gray"}
}

func (s OrderStatus) String() string {
	return s.Meta().Key
}

// StatusCatalog returns the metadata of every status in lifecycle order.
func StatusCatalog() []StatusMetadata {
	out := make([]StatusMetadata, 0, len(OrderStatuses))
	for _, s := range OrderStatuses {
		out = append(out, statusTable[s])
	}
	return out
}

// NonTerminalStatuses returns the statuses an order can still leave.
func NonTerminalStatuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(OrderStatuses))
	for _, s := range OrderStatuses {
		if !s.Terminal() {
			out = append(out, s)
		}
	}
	return out
}

// NextStatus returns the single forward step from s, if any.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	if s.Terminal() || !s.Valid() {
		return 0, false
	}
	return s + 1, true
}

// ValidateTransition checks a status change against the lifecycle: one step
// forward at a time, or Cancelled from any non-terminal state.
func ValidateTransition(from, to OrderStatus) error {
	details := map[string]any{"from": int(from), "to": int(to)}
	if from.Terminal() {
		return apperrors.ErrOrderAlreadyFinalized.With(details)
	}
	if !from.Valid() || !to.Valid() {
		return apperrors.ErrInvalidTransition.With(details)
	}
	if to == OrderStatusCancelled {
		return nil
	}
	if next, ok := NextStatus(from); ok && next == to {
		return nil
	}
	return apperrors.ErrInvalidTransition.With(details)
}

// AvailableTransitions lists the targets ValidateTransition accepts from s.
func AvailableTransitions(s OrderStatus) []OrderStatus {
	if s.Terminal() || !s.Valid() {
		return nil
	}
	out := []OrderStatus{}
	if next, ok := NextStatus(s); ok {
		out = append(out, next)
	}
	return append(out, OrderStatusCancelled)
}
