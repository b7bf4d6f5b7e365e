package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/api/dto"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/service"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// OrdersHandler serves checkout and the role-scoped order views.
type OrdersHandler struct {
	orders     *service.OrderService
	assignment *service.AssignmentService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService, assignment *service.AssignmentService) *OrdersHandler {
	return &OrdersHandler{orders: orders, assignment: assignment}
}

// CreateOrder POST /orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.CreateOrderInput{
		Lines: lo.Map(req.Lines, func(l dto.OrderLineRequest, _ int) service.OrderLineInput {
			return service.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, Name: l.Name}
		}),
		Delivery: domain.DeliveryInfo{
			Address:  req.Delivery.Address,
			Phone:    req.Delivery.Phone,
			Comments: req.Delivery.Comments,
		},
		DeliveryAddressID: req.DeliveryAddressID,
	}
	order, err := h.orders.CreateOrder(c.UserContext(), identity, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orderResponse(order, identity)})
}

// ListOrders GET /orders.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		return err
	}
	limit, offset := parsePage(c)
	orders, err := h.orders.ListOrders(c.UserContext(), identity, service.OrderListFilter{
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, orderResponse(&orders[i], identity))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetOrder GET /orders/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "order", "order_id")
	if err != nil {
		return err
	}
	order, err := h.orders.GetOrder(c.UserContext(), identity, orderID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order, identity)})
}

// History GET /orders/:id/history.
func (h *OrdersHandler) History(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "order", "order_id")
	if err != nil {
		return err
	}
	entries, err := h.orders.OrderHistory(c.UserContext(), identity, orderID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// ChangeStatus POST /orders/:id/status.
func (h *OrdersHandler) ChangeStatus(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	orderID, err := pathID(c, "order", "order_id")
	if err != nil {
		return err
	}
	order, err := h.orders.ChangeStatus(c.UserContext(), identity, orderID, domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order, identity)})
}

// AssignCourier POST /orders/:id/courier.
func (h *OrdersHandler) AssignCourier(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.AssignCourierRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.CourierID) == "" {
		return apperrors.NewValidationError("courier_id required", nil)
	}
	orderID, err := pathID(c, "order", "order_id")
	if err != nil {
		return err
	}
	order, err := h.assignment.AssignCourier(c.UserContext(), identity, orderID, req.CourierID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order, identity)})
}

// Stats GET /orders/stats.
func (h *OrdersHandler) Stats(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	stats, err := h.orders.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	byStatus := lo.MapKeys(stats.ByStatus, func(_ int, status domain.OrderStatus) string {
		return status.String()
	})
	return c.JSON(fiber.Map{"data": dto.OrderStatsResponse{ByStatus: byStatus, DeliveredToday: stats.DeliveredToday}})
}

// Statuses GET /catalog/statuses.
func (h *OrdersHandler) Statuses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.StatusCatalog()})
}
