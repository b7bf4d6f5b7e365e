package policy

import (
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/domain"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// OrderScope restricts an order listing for a caller. Empty Statuses means
// every status.
type OrderScope struct {
	Statuses   []domain.OrderStatus
	CustomerID *string
	CourierID  *string
}

// OrderScopeFor returns the listing scope of id.
func OrderScopeFor(id domain.Identity) (OrderScope, error) {
	if id == nil {
		return OrderScope{}, apperrors.NewUnauthorized("authentication required")
	}
	recordID := id.BackingRecordID()
	switch id.Role() {
	case domain.RoleAdmin:
		return OrderScope{}, nil
	case domain.RoleReceptionist:
		return OrderScope{Statuses: domain.NonTerminalStatuses()}, nil
	case domain.RoleDispatcher:
		return OrderScope{Statuses: []domain.OrderStatus{
			domain.OrderStatusPreparing,
			domain.OrderStatusReady,
			domain.OrderStatusInTransit,
		}}, nil
	case domain.RoleCourier:
		return OrderScope{
			Statuses:  []domain.OrderStatus{domain.OrderStatusInTransit},
			CourierID: &recordID,
		}, nil
	case domain.RoleCustomer:
		return OrderScope{CustomerID: &recordID}, nil
	default:
		return OrderScope{}, apperrors.NewForbidden("role cannot list orders")
	}
}

// Narrow intersects the scope with a caller supplied status filter. The
// result may be empty, in which case nothing is visible.
func (s OrderScope) Narrow(requested []domain.OrderStatus) (OrderScope, bool) {
	if len(requested) == 0 {
		return s, true
	}
	if len(s.Statuses) == 0 {
		s.Statuses = lo.Uniq(requested)
		return s, true
	}
	s.Statuses = lo.Intersect(s.Statuses, requested)
	return s, len(s.Statuses) > 0
}

// OldestFirst reports whether the listing is an in-transit queue, which is
// served FIFO. Every other listing is newest first.
func (s OrderScope) OldestFirst() bool {
	return len(s.Statuses) == 1 && s.Statuses[0] == domain.OrderStatusInTransit
}

// CanViewOrder reports whether id may fetch order by id. Staff fetches are not
// scope filtered; customers only see their own orders.
func CanViewOrder(id domain.Identity, order *domain.Order) bool {
	if id == nil || order == nil {
		return false
	}
	if id.Role() == domain.RoleCustomer {
		return order.CustomerID == id.BackingRecordID()
	}
	return id.Role().IsStaff()
}
