package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// StaffRoleRepository manages the staff role catalog.
type StaffRoleRepository interface {
	List(ctx context.Context) ([]domain.StaffRole, error)
	GetByID(ctx context.Context, id int) (*domain.StaffRole, error)
	GetByName(ctx context.Context, name string) (*domain.StaffRole, error)
	Ensure(ctx context.Context, names []string) (int, error)
}

type staffRoleRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRoleRepository builds the repository.
func NewStaffRoleRepository(pool *pgxpool.Pool) StaffRoleRepository {
	return &staffRoleRepository{pool: pool}
}

func (r *staffRoleRepository) List(ctx context.Context) ([]domain.StaffRole, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM staff_roles ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffRole
	for rows.Next() {
		var role domain.StaffRole
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *staffRoleRepository) GetByID(ctx context.Context, id int) (*domain.StaffRole, error) {
	var role domain.StaffRole
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM staff_roles WHERE id=$1`, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *staffRoleRepository) GetByName(ctx context.Context, name string) (*domain.StaffRole, error) {
	var role domain.StaffRole
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM staff_roles WHERE LOWER(name)=LOWER($1)`, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

// Ensure inserts the missing role names and reports how many were added.
func (r *staffRoleRepository) Ensure(ctx context.Context, names []string) (int, error) {
	inserted := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, name := range names {
			cmd, err := tx.Exec(ctx, `INSERT INTO staff_roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
			if err != nil {
				return err
			}
			inserted += int(cmd.RowsAffected())
		}
		return nil
	})
	return inserted, err
}
