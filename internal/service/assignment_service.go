package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/policy"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// AssignmentService hands orders to couriers.
type AssignmentService struct {
	orders     repository.OrderRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	OrderRepo  repository.OrderRepository
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		orders:     deps.OrderRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// AssignCourier sets the courier of an order that is still open. Only
// admins and dispatchers assign, and the assignee must be an active courier.
func (s *AssignmentService) AssignCourier(ctx context.Context, actor domain.Identity, orderID, courierID string) (*domain.Order, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !policy.CanAssignCourier(actor) {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}

	courier, err := s.staff.GetByID(ctx, courierID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "staff", map[string]any{"staff_id": courierID})
	}
	if !courier.Active {
		return nil, apperrors.NewConflict("courier inactive", map[string]any{"staff_id": courierID})
	}
	if domain.RoleFromStaffRoleName(courier.RoleName) != domain.RoleCourier {
		return nil, apperrors.NewValidationError("staff member is not a courier", map[string]any{"staff_id": courierID})
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order", map[string]any{"order_id": orderID})
	}
	if order.Status.Terminal() {
		return nil, apperrors.ErrOrderAlreadyFinalized.With(map[string]any{"order_id": orderID, "status": int(order.Status)})
	}
	if err := s.orders.AssignCourier(ctx, order.ID, courier.ID); err != nil {
		return nil, apperrors.MapRepoError(err, "order", map[string]any{"order_id": orderID})
	}
	order.CourierID = &courier.ID

	s.logger.Info("courier assigned",
		zap.String("order_code", order.OrderCode),
		zap.String("courier_id", courier.ID))
	if s.dispatcher != nil {
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventOrderCourierAssigned,
			OrderID:   order.ID,
			OrderCode: order.OrderCode,
			Actor:     events.ActorFrom(actor),
			Timestamp: s.now(),
			Payload:   events.OrderCourierAssignedPayload{CourierID: courier.ID},
		})
		if err != nil {
			s.logger.Warn("publish courier event failed",
				zap.String("order_code", order.OrderCode),
				zap.Error(err))
		}
	}
	return order, nil
}
