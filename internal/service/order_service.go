package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/observability"
	"github.com/spec-kit/grocery-service/internal/policy"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

const (
	orderCodeAttempts = 3
	// moneyScale matches the NUMERIC(12,2) money columns.
	moneyScale = 2
)

// OrderService is the single write path for orders: creation and status
// changes go through here.
type OrderService struct {
	orders     repository.OrderRepository
	lines      repository.OrderLineRepository
	history    repository.OrderHistoryRepository
	products   repository.ProductRepository
	addresses  repository.AddressRepository
	dispatcher events.Dispatcher
	guard      CheckoutGuard
	metrics    *observability.Metrics
	logger     *zap.Logger
	checkout   config.CheckoutConfig
	now        func() time.Time
	newCode    func(time.Time) string
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	LineRepo    repository.OrderLineRepository
	HistoryRepo repository.OrderHistoryRepository
	ProductRepo repository.ProductRepository
	AddressRepo repository.AddressRepository
	Dispatcher  events.Dispatcher
	Guard       CheckoutGuard
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// OrderLineInput is one cart line. Price and Name are the client snapshot,
// used only when the catalog cannot be read.
type OrderLineInput struct {
	ProductID string
	Quantity  int
	Price     *decimal.Decimal
	Name      string
}

// CreateOrderInput describes a checkout.
type CreateOrderInput struct {
	Lines             []OrderLineInput
	Delivery          domain.DeliveryInfo
	DeliveryAddressID *string
}

// OrderListFilter narrows a role-scoped listing.
type OrderListFilter struct {
	Statuses []domain.OrderStatus
	Limit    int
	Offset   int
}

// NewOrderService constructs the service.
func NewOrderService(cfg config.CheckoutConfig, deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := deps.Guard
	if guard == nil {
		guard = NewMemoryCheckoutGuard()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		lines:      deps.LineRepo,
		history:    deps.HistoryRepo,
		products:   deps.ProductRepo,
		addresses:  deps.AddressRepo,
		dispatcher: deps.Dispatcher,
		guard:      guard,
		metrics:    deps.Metrics,
		logger:     logger,
		checkout:   cfg,
		now:        time.Now,
		newCode:    generateOrderCode,
	}
}

// CreateOrder prices the cart from the catalog, writes the header and then
// the lines. A failed line write deletes the header before the error is
// returned. Stock is decremented afterwards and failures there are only
// logged unless strict stock checking is enabled, which refuses the order
// up front instead.
func (s *OrderService) CreateOrder(ctx context.Context, id domain.Identity, input CreateOrderInput) (*domain.Order, error) {
	customer, ok := id.(domain.CustomerIdentity)
	if !ok {
		if id == nil {
			return nil, apperrors.NewUnauthorized("authentication required")
		}
		return nil, apperrors.NewForbidden("only customers can place orders")
	}
	customerID := customer.BackingRecordID()

	lines, err := mergeLines(input.Lines)
	if err != nil {
		return nil, err
	}
	delivery, err := s.resolveDelivery(ctx, customerID, input)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, customerID, s.checkout.InFlightTTL())
	if err != nil {
		return nil, err
	}
	defer release()

	priced, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerID:        customerID,
		DeliveryAddressID: input.DeliveryAddressID,
		Status:            domain.OrderStatusPending,
		Delivery:          delivery,
		Lines:             priced,
	}
	order.ApplyTotals(s.shippingFor(order.LinesSubtotal()))

	if err := s.createHeader(ctx, order); err != nil {
		return nil, err
	}

	if err := s.lines.InsertLines(ctx, order.ID, order.Lines); err != nil {
		if delErr := s.orders.DeleteHeader(ctx, order.ID); delErr != nil {
			joined := errors.Join(err, delErr)
			s.logger.Error("compensating order delete failed",
				zap.String("order_id", order.ID),
				zap.String("order_code", order.OrderCode),
				zap.Error(joined))
			return nil, apperrors.NewPersistenceError(joined)
		}
		s.logger.Warn("order lines failed; header removed",
			zap.String("order_code", order.OrderCode),
			zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	s.decrementStock(ctx, order)

	s.recordStatusChange(ctx, id, order.ID, 0, order.Status)
	s.publishEvent(ctx, id, order, events.EventOrderCreated, events.OrderCreatedPayload{
		CustomerID: customerID,
		LineCount:  len(order.Lines),
		Total:      order.Total,
	})
	return order, nil
}

// ChangeStatus validates the lifecycle step, then the caller's right to
// perform it, and writes the new status. Concurrent changes are last write
// wins.
func (s *OrderService) ChangeStatus(ctx context.Context, id domain.Identity, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if id == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	order, err := s.loadVisibleOrder(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(order.Status, to); err != nil {
		return nil, err
	}
	if err := policy.AuthorizeTransition(id, order, to); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = to
	if to == domain.OrderStatusDelivered {
		now := s.now()
		order.DeliveredAt = &now
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, apperrors.MapRepoError(err, "order", map[string]any{"order_id": orderID})
	}

	s.recordStatusChange(ctx, id, order.ID, oldStatus, to)
	s.publishEvent(ctx, id, order, events.EventOrderStatusChanged, events.OrderStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: to,
	})
	return order, nil
}

// ListOrders returns the caller's role-scoped view. An in-transit queue is
// oldest first; every other listing is newest first.
func (s *OrderService) ListOrders(ctx context.Context, id domain.Identity, filter OrderListFilter) ([]domain.Order, error) {
	scope, err := policy.OrderScopeFor(id)
	if err != nil {
		return nil, err
	}
	narrowed, visible := scope.Narrow(filter.Statuses)
	if !visible {
		return []domain.Order{}, nil
	}

	orders, err := s.orders.List(ctx, repository.OrderFilter{
		Statuses:    narrowed.Statuses,
		CustomerID:  narrowed.CustomerID,
		CourierID:   narrowed.CourierID,
		OldestFirst: narrowed.OldestFirst(),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order", nil)
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	ids := lo.Map(orders, func(o domain.Order, _ int) string { return o.ID })
	linesByOrder, err := s.lines.ListByOrders(ctx, ids)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order lines", nil)
	}
	for i := range orders {
		orders[i].Lines = linesByOrder[orders[i].ID]
	}
	return orders, nil
}

// GetOrder fetches one order with its lines. Staff fetches are not scope
// filtered.
func (s *OrderService) GetOrder(ctx context.Context, id domain.Identity, orderID string) (*domain.Order, error) {
	if id == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	order, err := s.loadVisibleOrder(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order lines", nil)
	}
	order.Lines = lines
	return order, nil
}

// OrderHistory lists the status audit trail of a visible order.
func (s *OrderService) OrderHistory(ctx context.Context, id domain.Identity, orderID string) ([]domain.OrderStatusChange, error) {
	if id == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	order, err := s.loadVisibleOrder(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order history", nil)
	}
	return entries, nil
}

// Stats returns dashboard counts. Couriers only get their own deliveries of
// the day.
func (s *OrderService) Stats(ctx context.Context, id domain.Identity) (*domain.OrderStats, error) {
	if id == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	midnight := startOfDay(s.now())

	switch id.Role() {
	case domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDispatcher:
		counts, err := s.orders.CountByStatus(ctx)
		if err != nil {
			return nil, apperrors.MapRepoError(err, "order", nil)
		}
		delivered, err := s.orders.CountDeliveredSince(ctx, midnight, nil)
		if err != nil {
			return nil, apperrors.MapRepoError(err, "order", nil)
		}
		return &domain.OrderStats{ByStatus: counts, DeliveredToday: delivered}, nil
	case domain.RoleCourier:
		courierID := id.BackingRecordID()
		delivered, err := s.orders.CountDeliveredSince(ctx, midnight, &courierID)
		if err != nil {
			return nil, apperrors.MapRepoError(err, "order", nil)
		}
		return &domain.OrderStats{ByStatus: map[domain.OrderStatus]int{}, DeliveredToday: delivered}, nil
	default:
		return nil, apperrors.NewForbidden("role cannot view order statistics")
	}
}

func (s *OrderService) loadVisibleOrder(ctx context.Context, id domain.Identity, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "order", map[string]any{"order_id": orderID})
	}
	if !policy.CanViewOrder(id, order) {
		if id.Role() == domain.RoleCustomer {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, apperrors.NewForbidden("access denied")
	}
	return order, nil
}

func mergeLines(input []OrderLineInput) ([]OrderLineInput, error) {
	if len(input) == 0 {
		return nil, apperrors.NewValidationError("cart is empty", nil)
	}
	for i, line := range input {
		if strings.TrimSpace(line.ProductID) == "" {
			return nil, apperrors.NewValidationError("product id required", map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"line": i, "product_id": line.ProductID})
		}
		if line.Price != nil && line.Price.IsNegative() {
			return nil, apperrors.NewValidationError("price must not be negative", map[string]any{"line": i, "product_id": line.ProductID})
		}
		if line.Price != nil && !line.Price.Equal(line.Price.Round(moneyScale)) {
			return nil, apperrors.NewValidationError("price has more than two decimals", map[string]any{"line": i, "product_id": line.ProductID, "price": line.Price.String()})
		}
	}

	groups := lo.GroupBy(input, func(l OrderLineInput) string { return strings.TrimSpace(l.ProductID) })
	order := lo.Uniq(lo.Map(input, func(l OrderLineInput, _ int) string { return strings.TrimSpace(l.ProductID) }))
	return lo.Map(order, func(productID string, _ int) OrderLineInput {
		group := groups[productID]
		merged := OrderLineInput{
			ProductID: productID,
			Quantity:  lo.SumBy(group, func(l OrderLineInput) int { return l.Quantity }),
		}
		if withPrice, ok := lo.Find(group, func(l OrderLineInput) bool { return l.Price != nil }); ok {
			merged.Price = withPrice.Price
		}
		if withName, ok := lo.Find(group, func(l OrderLineInput) bool { return l.Name != "" }); ok {
			merged.Name = withName.Name
		}
		return merged
	}), nil
}

func (s *OrderService) resolveDelivery(ctx context.Context, customerID string, input CreateOrderInput) (domain.DeliveryInfo, error) {
	delivery := domain.DeliveryInfo{
		Address:  strings.TrimSpace(input.Delivery.Address),
		Phone:    strings.TrimSpace(input.Delivery.Phone),
		Comments: strings.TrimSpace(input.Delivery.Comments),
	}
	if input.DeliveryAddressID == nil {
		return delivery, nil
	}
	if s.addresses == nil {
		return delivery, apperrors.NewValidationError("saved addresses unavailable", nil)
	}
	address, err := s.addresses.GetByID(ctx, *input.DeliveryAddressID)
	if err != nil {
		return delivery, apperrors.MapRepoError(err, "address", map[string]any{"address_id": *input.DeliveryAddressID})
	}
	if address.CustomerID != customerID {
		return delivery, apperrors.NewNotFound("address", map[string]any{"address_id": *input.DeliveryAddressID})
	}
	if delivery.Address == "" {
		delivery.Address = address.Line
	}
	return delivery, nil
}

// priceLines freezes the unit price of every line. The catalog price wins;
// when the catalog cannot be read the client snapshot is used and a warning
// is logged.
func (s *OrderService) priceLines(ctx context.Context, lines []OrderLineInput) ([]domain.OrderLine, error) {
	ids := lo.Map(lines, func(l OrderLineInput, _ int) string { return l.ProductID })
	catalog, err := s.products.GetByIDs(ctx, ids)
	if repository.IsInvalidTextRepresentation(err) {
		return nil, apperrors.NewValidationError("product unavailable", map[string]any{"product_ids": ids})
	}
	if err != nil {
		return s.priceFromSnapshot(lines, err)
	}

	out := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		product, ok := catalog[line.ProductID]
		if !ok || !product.Active {
			return nil, apperrors.NewValidationError("product unavailable", map[string]any{"product_id": line.ProductID})
		}
		if s.checkout.StrictStock && product.Stock < line.Quantity {
			return nil, apperrors.ErrStock.With(map[string]any{
				"product_id": line.ProductID,
				"requested":  line.Quantity,
				"available":  product.Stock,
			})
		}
		out = append(out, domain.NewOrderLine(product.ID, product.Name, line.Quantity, product.Price))
	}
	return out, nil
}

func (s *OrderService) priceFromSnapshot(lines []OrderLineInput, cause error) ([]domain.OrderLine, error) {
	if s.checkout.StrictStock {
		return nil, apperrors.NewPersistenceError(cause)
	}
	out := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.Price == nil {
			return nil, apperrors.NewPersistenceError(cause)
		}
		name := line.Name
		if name == "" {
			name = line.ProductID
		}
		out = append(out, domain.NewOrderLine(line.ProductID, name, line.Quantity, *line.Price))
	}
	s.logger.Warn("catalog unavailable; using client price snapshot",
		zap.Int("lines", len(lines)),
		zap.Error(cause))
	return out, nil
}

func (s *OrderService) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	threshold := s.checkout.FreeShippingThreshold
	if threshold.IsPositive() && subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return s.checkout.ShippingFlat
}

func (s *OrderService) createHeader(ctx context.Context, order *domain.Order) error {
	var err error
	for attempt := 1; attempt <= orderCodeAttempts; attempt++ {
		order.OrderCode = s.newCode(s.now())
		err = s.orders.CreateHeader(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderCode) {
			return apperrors.MapRepoError(err, "order", nil)
		}
		s.logger.Warn("order code collision", zap.String("order_code", order.OrderCode), zap.Int("attempt", attempt))
	}
	return apperrors.NewConflict("could not allocate a unique order code", map[string]any{"attempts": orderCodeAttempts})
}

func (s *OrderService) decrementStock(ctx context.Context, order *domain.Order) {
	for _, line := range order.Lines {
		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			stockErr := apperrors.ErrStock.Wrap(err)
			s.metrics.RecordEvent("stock_decrement_failed")
			s.logger.Warn("stock decrement failed",
				zap.String("order_code", order.OrderCode),
				zap.String("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(stockErr))
		}
	}
}

func (s *OrderService) recordStatusChange(ctx context.Context, id domain.Identity, orderID string, from, to domain.OrderStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.OrderStatusChange{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorKind:  domain.ActorKind(id),
	}
	if id != nil {
		actorID := id.BackingRecordID()
		entry.ActorID = &actorID
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("order history write failed", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *OrderService) publishEvent(ctx context.Context, id domain.Identity, order *domain.Order, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		Actor:     events.ActorFrom(id),
		Timestamp: s.now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("publish order event failed",
			zap.String("event_type", string(eventType)),
			zap.String("order_code", order.OrderCode),
			zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
