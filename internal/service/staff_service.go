package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// StaffService manages staff accounts and the staff role catalog.
type StaffService struct {
	customers  repository.CustomerRepository
	staff      repository.StaffRepository
	roles      repository.StaffRoleRepository
	bcryptCost int
}

// StaffDependencies encapsulates repositories required for staff management.
type StaffDependencies struct {
	CustomerRepo  repository.CustomerRepository
	StaffRepo     repository.StaffRepository
	StaffRoleRepo repository.StaffRoleRepository
}

// StaffCreateInput describes a new staff account.
type StaffCreateInput struct {
	FullName string
	Email    string
	Password string
	RoleName string
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.AuthConfig, deps StaffDependencies) *StaffService {
	return &StaffService{
		customers:  deps.CustomerRepo,
		staff:      deps.StaffRepo,
		roles:      deps.StaffRoleRepo,
		bcryptCost: cfg.BcryptCost,
	}
}

func requireAdmin(actor domain.Identity) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role() != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateStaffMember adds a staff account on behalf of an admin.
func (s *StaffService) CreateStaffMember(ctx context.Context, actor domain.Identity, input StaffCreateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Provision(ctx, input)
}

// Provision creates a staff account without an acting identity. It backs
// the operator CLI.
func (s *StaffService) Provision(ctx context.Context, input StaffCreateInput) (*domain.StaffMember, error) {
	email := normalizeEmail(input.Email)
	if err := validateAccount(email, input.Password, input.FullName); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByName(ctx, strings.TrimSpace(input.RoleName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown staff role", map[string]any{"role": input.RoleName})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	if err := ensureEmailAvailable(ctx, s.customers, s.staff, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	staff := &domain.StaffMember{
		FullName:       strings.TrimSpace(input.FullName),
		CorporateEmail: email,
		PasswordHash:   hash,
		RoleID:         role.ID,
		RoleName:       role.Name,
		Active:         true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	return staff, nil
}

// ListStaffMembers lists staff, optionally narrowed to one derived role.
func (s *StaffService) ListStaffMembers(ctx context.Context, actor domain.Identity, filters StaffListFilters) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.listByRole(ctx, filters)
}

// ListCouriers returns the active couriers orders can be assigned to.
func (s *StaffService) ListCouriers(ctx context.Context, actor domain.Identity) ([]domain.StaffMember, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role() != domain.RoleAdmin && actor.Role() != domain.RoleDispatcher {
		return nil, apperrors.NewForbidden("role cannot list couriers")
	}
	courier := domain.RoleCourier
	active := true
	return s.listByRole(ctx, StaffListFilters{Role: &courier, Active: &active, Limit: 200})
}

// SetStaffActive enables or disables a staff account. Disabled accounts are
// refused on their next request.
func (s *StaffService) SetStaffActive(ctx context.Context, actor domain.Identity, staffID string, active bool) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.BackingRecordID() == staffID && !active {
		return nil, apperrors.NewValidationError("cannot disable own account", nil)
	}
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, apperrors.MapRepoError(err, "staff", map[string]any{"staff_id": staffID})
	}
	staff.Active = active
	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, apperrors.MapRepoError(err, "staff", map[string]any{"staff_id": staffID})
	}
	return staff, nil
}

// ListRoles returns the staff role catalog.
func (s *StaffService) ListRoles(ctx context.Context) ([]domain.StaffRole, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return roles, nil
}

// SeedRoles inserts the default role names that are missing.
func (s *StaffService) SeedRoles(ctx context.Context) (int, error) {
	added, err := s.roles.Ensure(ctx, domain.DefaultStaffRoleNames)
	if err != nil {
		return 0, apperrors.NewPersistenceError(err)
	}
	return added, nil
}

func (s *StaffService) listByRole(ctx context.Context, filters StaffListFilters) ([]domain.StaffMember, error) {
	members, err := s.staff.List(ctx, repository.StaffFilter{
		Active: filters.Active,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if filters.Role == nil {
		return members, nil
	}
	return lo.Filter(members, func(m domain.StaffMember, _ int) bool {
		return domain.RoleFromStaffRoleName(m.RoleName) == *filters.Role
	}), nil
}
