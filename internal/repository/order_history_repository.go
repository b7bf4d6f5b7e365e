package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// OrderHistoryRepository stores status audit entries.
type OrderHistoryRepository interface {
	Create(ctx context.Context, change *domain.OrderStatusChange) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderStatusChange, error)
}

type orderHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewOrderHistoryRepository builds repository.
func NewOrderHistoryRepository(pool *pgxpool.Pool) OrderHistoryRepository {
	return &orderHistoryRepository{pool: pool}
}

func (r *orderHistoryRepository) Create(ctx context.Context, change *domain.OrderStatusChange) error {
	const query = `
        INSERT INTO order_status_history (order_id, from_status, to_status, actor_kind, actor_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		change.OrderID,
		change.FromStatus,
		change.ToStatus,
		change.ActorKind,
		change.ActorID,
	).Scan(&change.ID, &change.CreatedAt)
}

func (r *orderHistoryRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderStatusChange, error) {
	const query = `
        SELECT id, order_id, from_status, to_status, actor_kind, actor_id, created_at
        FROM order_status_history WHERE order_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderStatusChange
	for rows.Next() {
		var change domain.OrderStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.OrderID,
			&change.FromStatus,
			&change.ToStatus,
			&change.ActorKind,
			&change.ActorID,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
