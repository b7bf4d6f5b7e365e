package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// AddressRepository stores customer delivery addresses.
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Address, error)
}

type addressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository builds repository.
func NewAddressRepository(pool *pgxpool.Pool) AddressRepository {
	return &addressRepository{pool: pool}
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	const query = `
        INSERT INTO customer_addresses (customer_id, line, reference, district)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		address.CustomerID,
		address.Line,
		address.Reference,
		address.District,
	).Scan(&address.ID, &address.CreatedAt)
}

func (r *addressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	const query = `
        SELECT id, customer_id, line, reference, district, created_at
        FROM customer_addresses WHERE id=$1`
	var address domain.Address
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&address.ID,
		&address.CustomerID,
		&address.Line,
		&address.Reference,
		&address.District,
		&address.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Address, error) {
	const query = `
        SELECT id, customer_id, line, reference, district, created_at
        FROM customer_addresses WHERE customer_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		var address domain.Address
		if err := rows.Scan(
			&address.ID,
			&address.CustomerID,
			&address.Line,
			&address.Reference,
			&address.District,
			&address.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, address)
	}
	return result, rows.Err()
}
