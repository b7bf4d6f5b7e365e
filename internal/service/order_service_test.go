package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/observability"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

type orderFixture struct {
	svc        *OrderService
	orders     *fakeOrders
	lines      *fakeLines
	history    *fakeHistory
	products   *fakeProducts
	addresses  *fakeAddresses
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
}

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newOrderFixture(cfg config.CheckoutConfig) *orderFixture {
	f := &orderFixture{
		orders:     newFakeOrders(),
		lines:      &fakeLines{rows: map[string][]domain.OrderLine{}},
		history:    &fakeHistory{},
		addresses:  &fakeAddresses{rows: map[string]*domain.Address{}},
		dispatcher: &recordingDispatcher{},
		metrics:    observability.NewMetrics(),
		products: newFakeProducts(
			domain.Product{ID: "p1", Name: "Arroz 1kg", Price: decimal.RequireFromString("10.00"), Stock: 5, Active: true},
			domain.Product{ID: "p2", Name: "Leche", Price: decimal.RequireFromString("4.25"), Stock: 1, Active: true},
			domain.Product{ID: "p3", Name: "Descontinuado", Price: decimal.RequireFromString("1.00"), Stock: 9, Active: false},
		),
	}
	if cfg.ShippingFlat.IsZero() && cfg.FreeShippingThreshold.IsZero() {
		cfg.ShippingFlat = decimal.RequireFromString("3.50")
	}
	f.svc = NewOrderService(cfg, OrderDependencies{
		OrderRepo:   f.orders,
		LineRepo:    f.lines,
		HistoryRepo: f.history,
		ProductRepo: f.products,
		AddressRepo: f.addresses,
		Dispatcher:  f.dispatcher,
		Metrics:     f.metrics,
	})
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func cart(lines ...OrderLineInput) CreateOrderInput {
	return CreateOrderInput{Lines: lines, Delivery: domain.DeliveryInfo{Address: "Av. Larco 123", Phone: "999111222"}}
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	clientPrice := decimal.RequireFromString("1.00")

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "p1", Quantity: 2, Price: &clientPrice},
	))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Subtotal), order.Subtotal.String())
	assert.True(t, decimal.RequireFromString("3.50").Equal(order.ShippingCost))
	assert.True(t, decimal.RequireFromString("23.50").Equal(order.Total))
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.ShippingCost)))
	assert.Regexp(t, `^PED-[0-9A-Z]+-[0-9A-Z]{4}$`, order.OrderCode)
	assert.LessOrEqual(t, len(order.OrderCode), 20)

	stored := f.lines.rows[order.ID]
	require.Len(t, stored, 1)
	assert.Equal(t, "Arroz 1kg", stored[0].ProductName)
	assert.True(t, decimal.RequireFromString("10.00").Equal(stored[0].HistoricalUnitPrice))

	assert.Equal(t, 2, f.products.decremented["p1"])
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.OrderStatusPending, f.history.entries[0].ToStatus)
	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, events.EventOrderCreated, f.dispatcher.events[0].Type)
}

func TestCreateOrderMergesDuplicateProducts(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "p1", Quantity: 1},
		OrderLineInput{ProductID: "p2", Quantity: 1},
		OrderLineInput{ProductID: "p1", Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "p1", order.Lines[0].ProductID)
	assert.Equal(t, 3, order.Lines[0].Quantity)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	negative := decimal.RequireFromString("-1")

	cases := map[string]CreateOrderInput{
		"empty cart":       cart(),
		"zero quantity":    cart(OrderLineInput{ProductID: "p1", Quantity: 0}),
		"negative price":   cart(OrderLineInput{ProductID: "p1", Quantity: 1, Price: &negative}),
		"missing product":  cart(OrderLineInput{ProductID: "", Quantity: 1}),
		"inactive product": cart(OrderLineInput{ProductID: "p3", Quantity: 1}),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), input)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidation, apperrors.ToDomainError(err).Code)
		})
	}
	assert.Empty(t, f.orders.rows)
}

func TestCreateOrderRequiresCustomer(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	input := cart(OrderLineInput{ProductID: "p1", Quantity: 1})

	_, err := f.svc.CreateOrder(context.Background(), nil, input)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)

	_, err = f.svc.CreateOrder(context.Background(), staffIdentity("s1", "Administrador"), input)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)
}

func TestCreateOrderFreeShippingThreshold(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{
		ShippingFlat:          decimal.RequireFromString("5.00"),
		FreeShippingThreshold: decimal.RequireFromString("20.00"),
	})

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 2}))
	require.NoError(t, err)
	assert.True(t, order.ShippingCost.IsZero())
	assert.True(t, order.Total.Equal(order.Subtotal))

	order, err = f.svc.CreateOrder(context.Background(), customerIdentity("c2"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(order.ShippingCost))
}

func TestCreateOrderCompensatesFailedLines(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.lines.insertErr = errStoreDown

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
	assert.Len(t, f.orders.deleted, 1)
	assert.Empty(t, f.orders.rows)
	assert.Empty(t, f.products.decremented)
	assert.Empty(t, f.dispatcher.events)
}

func TestCreateOrderReportsFailedCompensation(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.lines.insertErr = errStoreDown
	cleanupErr := errors.New("delete timed out")
	f.orders.deleteErr = cleanupErr

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
	assert.ErrorIs(t, err, errStoreDown)
	assert.ErrorIs(t, err, cleanupErr)
}

func TestCreateOrderStockFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.products.decrementErr = errStoreDown

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Events["stock_decrement_failed"])
}

func TestCreateOrderOversellIsAllowedByDefault(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p2", Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, -2, f.products.rows["p2"].Stock)
}

func TestCreateOrderStrictStock(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{StrictStock: true, ShippingFlat: decimal.RequireFromString("3.50")})

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p2", Quantity: 3}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStock))
	assert.Empty(t, f.orders.rows)

	f.products.readErr = errStoreDown
	price := decimal.RequireFromString("4.25")
	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p2", Quantity: 1, Price: &price}))
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
}

func TestCreateOrderFallsBackToClientSnapshot(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.products.readErr = errStoreDown
	price := decimal.RequireFromString("2.40")

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "p9", Quantity: 5, Price: &price, Name: "Pan"},
	))
	require.NoError(t, err)
	assert.Equal(t, "Pan", order.Lines[0].ProductName)
	assert.True(t, decimal.RequireFromString("12.00").Equal(order.Subtotal))

	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p9", Quantity: 1}))
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
}

func TestCreateOrderRejectsSubCentSnapshot(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.products.readErr = errStoreDown
	price := decimal.RequireFromString("0.333")

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "p9", Quantity: 3, Price: &price, Name: "Caramelo"},
	))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.ToDomainError(err).Code)
	assert.Empty(t, f.orders.rows)

	padded := decimal.RequireFromString("0.330")
	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "p9", Quantity: 3, Price: &padded, Name: "Caramelo"},
	))
	require.NoError(t, err)
	line := order.Lines[0]
	assert.True(t, line.LineSubtotal.Equal(line.HistoricalUnitPrice.Mul(decimal.NewFromInt(3))))
	assert.Equal(t, "0.99", line.LineSubtotal.StringFixed(2))
}

func TestCreateOrderMalformedProductIDIsNotASnapshotFallback(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.products.readErr = fmt.Errorf("get products: %w", &pgconn.PgError{Code: "22P02"})
	price := decimal.RequireFromString("2.40")

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(
		OrderLineInput{ProductID: "not-a-uuid", Quantity: 1, Price: &price},
	))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.ToDomainError(err).Code)
	assert.Empty(t, f.orders.rows)
}

func TestCreateOrderLogsPublishFailure(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	core, logs := observer.New(zapcore.WarnLevel)
	f.svc.logger = zap.New(core)
	f.svc.dispatcher = failingDispatcher{}

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.NoError(t, err)

	warnings := logs.FilterMessage("publish order event failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, order.OrderCode, warnings[0].ContextMap()["order_code"])
	assert.Equal(t, string(events.EventOrderCreated), warnings[0].ContextMap()["event_type"])
}

func TestCreateOrderRetriesDuplicateCode(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.orders.createErrs = []error{duplicateCodeErr(), duplicateCodeErr()}
	codes := []string{}
	f.svc.newCode = func(now time.Time) string {
		code := generateOrderCode(now)
		codes = append(codes, code)
		return code
	}

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, f.orders.createCalls)
	assert.Len(t, codes, 3)
	assert.Equal(t, codes[2], order.OrderCode)
}

func TestCreateOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.orders.createErrs = []error{duplicateCodeErr(), duplicateCodeErr(), duplicateCodeErr()}

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)
	assert.Equal(t, orderCodeAttempts, f.orders.createCalls)
}

func TestCreateOrderRejectsConcurrentCheckout(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	release, err := f.svc.guard.Acquire(context.Background(), "c1", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	assert.True(t, errors.Is(err, apperrors.ErrCheckoutInProgress))

	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c2"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	assert.NoError(t, err)

	release()
	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c1"), cart(OrderLineInput{ProductID: "p1", Quantity: 1}))
	assert.NoError(t, err)
}

func TestCreateOrderUsesSavedAddress(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.addresses.rows["a1"] = &domain.Address{ID: "a1", CustomerID: "c1", Line: "Jr. Puno 45"}
	addressID := "a1"

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity("c1"), CreateOrderInput{
		Lines:             []OrderLineInput{{ProductID: "p1", Quantity: 1}},
		DeliveryAddressID: &addressID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jr. Puno 45", order.Delivery.Address)

	_, err = f.svc.CreateOrder(context.Background(), customerIdentity("c2"), CreateOrderInput{
		Lines:             []OrderLineInput{{ProductID: "p1", Quantity: 1}},
		DeliveryAddressID: &addressID,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func seedOrder(f *orderFixture, id, customerID string, status domain.OrderStatus, courierID *string, createdAt time.Time) {
	f.orders.put(domain.Order{
		ID:         id,
		OrderCode:  "PED-" + id,
		CustomerID: customerID,
		CourierID:  courierID,
		Status:     status,
		CreatedAt:  createdAt,
	})
}

func TestChangeStatusFollowsLifecycle(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	courier := "k1"
	seedOrder(f, "o1", "c1", domain.OrderStatusInTransit, &courier, fixedNow)

	order, err := f.svc.ChangeStatus(context.Background(), staffIdentity("k1", "Repartidor"), "o1", domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, fixedNow, *order.DeliveredAt)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.OrderStatusInTransit, f.history.entries[0].FromStatus)
	assert.Equal(t, domain.BackingStaffRecord, f.history.entries[0].ActorKind)
	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, events.EventOrderStatusChanged, f.dispatcher.events[0].Type)

	_, err = f.svc.ChangeStatus(context.Background(), staffIdentity("a1", "Administrador"), "o1", domain.OrderStatusCancelled)
	assert.True(t, errors.Is(err, apperrors.ErrOrderAlreadyFinalized))
}

func TestChangeStatusErrors(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	seedOrder(f, "o1", "c1", domain.OrderStatusPending, nil, fixedNow)
	seedOrder(f, "o2", "c1", domain.OrderStatusPaid, nil, fixedNow)

	_, err := f.svc.ChangeStatus(context.Background(), staffIdentity("a1", "Administrador"), "o1", domain.OrderStatusReady)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	_, err = f.svc.ChangeStatus(context.Background(), staffIdentity("d1", "Despachador"), "o1", domain.OrderStatusPaid)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)

	_, err = f.svc.ChangeStatus(context.Background(), customerIdentity("c1"), "o2", domain.OrderStatusCancelled)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)

	_, err = f.svc.ChangeStatus(context.Background(), customerIdentity("c2"), "o1", domain.OrderStatusCancelled)
	assert.True(t, apperrors.IsNotFound(err))

	order, err := f.svc.ChangeStatus(context.Background(), customerIdentity("c1"), "o1", domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestChangeStatusHistoryFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	f.history.err = errStoreDown
	seedOrder(f, "o1", "c1", domain.OrderStatusPending, nil, fixedNow)

	order, err := f.svc.ChangeStatus(context.Background(), staffIdentity("r1", "Recepcionista"), "o1", domain.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
}

func TestListOrdersCourierQueueIsOldestFirst(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	courier := "k1"
	other := "k2"
	seedOrder(f, "newer", "c1", domain.OrderStatusInTransit, &courier, fixedNow)
	seedOrder(f, "older", "c2", domain.OrderStatusInTransit, &courier, fixedNow.Add(-time.Hour))
	seedOrder(f, "foreign", "c3", domain.OrderStatusInTransit, &other, fixedNow.Add(-2*time.Hour))
	seedOrder(f, "done", "c1", domain.OrderStatusDelivered, &courier, fixedNow.Add(-3*time.Hour))

	orders, err := f.svc.ListOrders(context.Background(), staffIdentity("k1", "Repartidor"), OrderListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "older", orders[0].ID)
	assert.Equal(t, "newer", orders[1].ID)
	assert.True(t, f.orders.lastFilter.OldestFirst)
}

func TestListOrdersScopes(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	seedOrder(f, "o1", "c1", domain.OrderStatusPending, nil, fixedNow.Add(-time.Hour))
	seedOrder(f, "o2", "c1", domain.OrderStatusReady, nil, fixedNow)
	seedOrder(f, "o3", "c2", domain.OrderStatusPaid, nil, fixedNow)
	seedOrder(f, "o4", "c2", domain.OrderStatusDelivered, nil, fixedNow)

	mine, err := f.svc.ListOrders(context.Background(), customerIdentity("c1"), OrderListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o2", mine[0].ID)

	reception, err := f.svc.ListOrders(context.Background(), staffIdentity("r1", "Recepcionista"), OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, reception, 3)
	for _, o := range reception {
		assert.NotEqual(t, "o4", o.ID)
	}

	none, err := f.svc.ListOrders(context.Background(), staffIdentity("d1", "Despachador"), OrderListFilter{Statuses: []domain.OrderStatus{domain.OrderStatusPending}})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.ListOrders(context.Background(), staffIdentity("s1", "Bodega"), OrderListFilter{})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)
}

func TestGetOrderVisibility(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	seedOrder(f, "o1", "c1", domain.OrderStatusPending, nil, fixedNow)
	f.lines.rows["o1"] = []domain.OrderLine{domain.NewOrderLine("p1", "Arroz 1kg", 2, decimal.RequireFromString("10.00"))}

	order, err := f.svc.GetOrder(context.Background(), customerIdentity("c1"), "o1")
	require.NoError(t, err)
	assert.Len(t, order.Lines, 1)

	_, err = f.svc.GetOrder(context.Background(), customerIdentity("c2"), "o1")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.GetOrder(context.Background(), staffIdentity("k1", "Repartidor"), "o1")
	assert.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), customerIdentity("c1"), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStats(t *testing.T) {
	f := newOrderFixture(config.CheckoutConfig{})
	courier := "k1"
	delivered := fixedNow.Add(-time.Hour)
	seedOrder(f, "o1", "c1", domain.OrderStatusPending, nil, fixedNow)
	f.orders.put(domain.Order{ID: "o2", CustomerID: "c1", CourierID: &courier, Status: domain.OrderStatusDelivered, DeliveredAt: &delivered})
	f.orders.put(domain.Order{ID: "o3", CustomerID: "c1", Status: domain.OrderStatusDelivered, DeliveredAt: &delivered})

	stats, err := f.svc.Stats(context.Background(), staffIdentity("a1", "Administrador"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus[domain.OrderStatusPending])
	assert.Equal(t, 2, stats.DeliveredToday)

	stats, err = f.svc.Stats(context.Background(), staffIdentity("k1", "Repartidor"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DeliveredToday)
	assert.Empty(t, stats.ByStatus)

	_, err = f.svc.Stats(context.Background(), customerIdentity("c1"))
	assert.Equal(t, apperrors.CodeForbidden, apperrors.ToDomainError(err).Code)
}

func TestOrderCodeShape(t *testing.T) {
	code := generateOrderCode(fixedNow)
	assert.Regexp(t, `^PED-[0-9A-Z]+-[0-9A-Z]{4}$`, code)
	assert.LessOrEqual(t, len(code), orderCodeMaxLen)
	assert.NotEqual(t, code, generateOrderCode(fixedNow))
}
