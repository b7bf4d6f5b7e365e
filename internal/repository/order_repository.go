package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grocery-service/internal/domain"
)

const orderCodeConstraint = "orders_order_code_key"

// OrderFilter captures role-scoped listing parameters.
type OrderFilter struct {
	Statuses    []domain.OrderStatus
	CustomerID  *string
	CourierID   *string
	OldestFirst bool
	Limit       int
	Offset      int
}

// LegacyNote is an order whose delivery info only exists as free text in
// customer_notes. Reads never parse it; the notes backfill does, once.
type LegacyNote struct {
	OrderID string
	Notes   string
}

// OrderRepository encapsulates order header persistence.
type OrderRepository interface {
	CreateHeader(ctx context.Context, order *domain.Order) error
	DeleteHeader(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
	AssignCourier(ctx context.Context, id, courierID string) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	CountDeliveredSince(ctx context.Context, since time.Time, courierID *string) (int, error)
	ListLegacyNotes(ctx context.Context, limit int) ([]LegacyNote, error)
	SetDeliveryInfo(ctx context.Context, id string, info domain.DeliveryInfo) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderSelect = `
        SELECT id, order_code, customer_id, delivery_address_id, courier_id, status_code,
               subtotal, shipping_cost, total, delivery_info,
               created_at, updated_at, delivered_at
        FROM orders`

// CreateHeader inserts the order row without lines. A colliding order code is
// reported as ErrDuplicateOrderCode.
func (r *orderRepository) CreateHeader(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (order_code, customer_id, delivery_address_id, status_code, subtotal, shipping_cost, total, delivery_info)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		order.OrderCode,
		order.CustomerID,
		order.DeliveryAddressID,
		order.Status,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.Delivery,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if IsUniqueViolation(err, orderCodeConstraint) {
		return fmt.Errorf("%w: %s", ErrDuplicateOrderCode, order.OrderCode)
	}
	return err
}

func (r *orderRepository) DeleteHeader(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	rows, err := r.pool.Query(ctx, orderSelect+` WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.CourierID != nil {
		args = append(args, *filter.CourierID)
		clauses = append(clauses, fmt.Sprintf("courier_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status_code IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	direction := "DESC"
	if filter.OldestFirst {
		direction = "ASC"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		orderSelect, strings.Join(clauses, " AND "), direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// UpdateStatus writes the status and delivered_at of order. Last write wins.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	const query = `
        UPDATE orders SET status_code=$1, delivered_at=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, order.Status, order.DeliveredAt, order.ID).Scan(&order.UpdatedAt)
}

func (r *orderRepository) AssignCourier(ctx context.Context, id, courierID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET courier_id=$1, updated_at=NOW() WHERE id=$2`, courierID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status_code, COUNT(*) FROM orders GROUP BY status_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int)
	for rows.Next() {
		var status domain.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *orderRepository) CountDeliveredSince(ctx context.Context, since time.Time, courierID *string) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE status_code=$1 AND delivered_at >= $2`
	args := []any{domain.OrderStatusDelivered, since}
	if courierID != nil {
		args = append(args, *courierID)
		query += fmt.Sprintf(" AND courier_id=$%d", len(args))
	}
	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *orderRepository) ListLegacyNotes(ctx context.Context, limit int) ([]LegacyNote, error) {
	if limit <= 0 {
		limit = 500
	}
	const query = `
        SELECT id, customer_notes FROM orders
        WHERE delivery_info IS NULL AND customer_notes IS NOT NULL
        ORDER BY created_at ASC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LegacyNote
	for rows.Next() {
		var note LegacyNote
		if err := rows.Scan(&note.OrderID, &note.Notes); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}

func (r *orderRepository) SetDeliveryInfo(ctx context.Context, id string, info domain.DeliveryInfo) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET delivery_info=$1, updated_at=NOW() WHERE id=$2`, info, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var result []domain.Order
	for rows.Next() {
		var (
			order    domain.Order
			delivery *domain.DeliveryInfo
		)
		if err := rows.Scan(
			&order.ID,
			&order.OrderCode,
			&order.CustomerID,
			&order.DeliveryAddressID,
			&order.CourierID,
			&order.Status,
			&order.Subtotal,
			&order.ShippingCost,
			&order.Total,
			&delivery,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.DeliveredAt,
		); err != nil {
			return nil, err
		}
		if delivery != nil {
			order.Delivery = *delivery
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
