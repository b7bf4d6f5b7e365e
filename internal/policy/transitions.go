package policy

import (
	"github.com/spec-kit/grocery-service/internal/domain"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

type step struct {
	from domain.OrderStatus
	to   domain.OrderStatus
}

var staffSteps = map[domain.Role][]step{
	domain.RoleReceptionist: {
		{domain.OrderStatusPending, domain.OrderStatusPaid},
		{domain.OrderStatusPaid, domain.OrderStatusPreparing},
	},
	domain.RoleDispatcher: {
		{domain.OrderStatusPreparing, domain.OrderStatusReady},
		{domain.OrderStatusReady, domain.OrderStatusInTransit},
	},
	domain.RoleCourier: {
		{domain.OrderStatusInTransit, domain.OrderStatusDelivered},
	},
}

// AuthorizeTransition checks that id may move order to the target status.
// The lifecycle itself is validated by domain.ValidateTransition first.
func AuthorizeTransition(id domain.Identity, order *domain.Order, to domain.OrderStatus) error {
	if id == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	role := id.Role()
	switch role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleCustomer:
		if order.CustomerID == id.BackingRecordID() && order.Status == domain.OrderStatusPending && to == domain.OrderStatusCancelled {
			return nil
		}
		return apperrors.NewForbidden("customers may only cancel their own pending orders")
	case domain.RoleReceptionist:
		if to == domain.OrderStatusCancelled {
			return nil
		}
	case domain.RoleCourier:
		if order.CourierID == nil || *order.CourierID != id.BackingRecordID() {
			return apperrors.NewForbidden("order not assigned to courier")
		}
	}
	for _, s := range staffSteps[role] {
		if s.from == order.Status && s.to == to {
			return nil
		}
	}
	return apperrors.NewForbidden("role cannot perform this transition")
}

// AllowedActions lists the targets id may move order to right now.
func AllowedActions(id domain.Identity, order *domain.Order) []domain.OrderStatus {
	out := []domain.OrderStatus{}
	for _, to := range domain.AvailableTransitions(order.Status) {
		if AuthorizeTransition(id, order, to) == nil {
			out = append(out, to)
		}
	}
	return out
}

// CanAssignCourier reports whether id may assign couriers.
func CanAssignCourier(id domain.Identity) bool {
	if id == nil {
		return false
	}
	return id.Role() == domain.RoleAdmin || id.Role() == domain.RoleDispatcher
}
