package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// OrderLineRepository manages the frozen line snapshots of orders.
type OrderLineRepository interface {
	InsertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	ListByOrders(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error)
}

type orderLineRepository struct {
	pool *pgxpool.Pool
}

// NewOrderLineRepository builds repository.
func NewOrderLineRepository(pool *pgxpool.Pool) OrderLineRepository {
	return &orderLineRepository{pool: pool}
}

const orderLineSelect = `
        SELECT id, order_id, product_id, product_name, quantity, historical_unit_price, line_subtotal
        FROM order_lines`

// InsertLines writes every line in one transaction; either all lines are
// stored or none.
func (r *orderLineRepository) InsertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	const query = `
        INSERT INTO order_lines (order_id, product_id, product_name, quantity, historical_unit_price, line_subtotal)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range lines {
			line := &lines[i]
			line.OrderID = orderID
			if err := tx.QueryRow(ctx, query,
				orderID,
				line.ProductID,
				line.ProductName,
				line.Quantity,
				line.HistoricalUnitPrice,
				line.LineSubtotal,
			).Scan(&line.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderLineRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.pool.Query(ctx, orderLineSelect+` WHERE order_id=$1 ORDER BY product_name ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderLines(rows)
}

func (r *orderLineRepository) ListByOrders(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	out := make(map[string][]domain.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, orderLineSelect+` WHERE order_id::text = ANY($1) ORDER BY product_name ASC`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines, err := scanOrderLines(rows)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		out[line.OrderID] = append(out[line.OrderID], line)
	}
	return out, nil
}

func scanOrderLines(rows pgx.Rows) ([]domain.OrderLine, error) {
	var result []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.HistoricalUnitPrice,
			&line.LineSubtotal,
		); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}
