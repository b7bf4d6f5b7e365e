package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// IdentityResolver turns credentials into identities. Customers are always
// looked up before staff; a customer row shadows a staff row with the same
// email, which registration prevents by keeping the two email sets disjoint.
type IdentityResolver struct {
	customers repository.CustomerRepository
	staff     repository.StaffRepository
	logger    *zap.Logger
}

// NewIdentityResolver builds the resolver.
func NewIdentityResolver(customers repository.CustomerRepository, staff repository.StaffRepository, logger *zap.Logger) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{customers: customers, staff: staff, logger: logger}
}

var _ auth.Resolver = (*IdentityResolver)(nil)

// Resolve implements auth.Resolver. A password credential is verified against
// the stored hash; a session credential was verified when it was issued.
func (r *IdentityResolver) Resolve(ctx context.Context, cred auth.Credential) (domain.Identity, error) {
	if cred == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	email := normalizeEmail(cred.CredentialEmail())
	if email == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	customer, err := r.customers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !customer.Active {
			return nil, apperrors.ErrAccountDisabled
		}
		if err := checkSecret(cred, customer.PasswordHash); err != nil {
			return nil, err
		}
		return domain.CustomerIdentity{Customer: *customer}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		r.logger.Error("customer lookup failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	staff, err := r.staff.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !staff.Active {
			return nil, apperrors.ErrAccountDisabled
		}
		if err := checkSecret(cred, staff.PasswordHash); err != nil {
			return nil, err
		}
		return domain.NewStaffIdentity(*staff), nil
	case !errors.Is(err, pgx.ErrNoRows):
		r.logger.Error("staff lookup failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	return nil, apperrors.ErrInvalidCredentials
}

func checkSecret(cred auth.Credential, hash string) error {
	password, ok := cred.(auth.PasswordCredential)
	if !ok {
		return nil
	}
	if err := auth.ComparePassword(hash, password.Secret); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
