package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// ensureEmailAvailable keeps customer and staff emails disjoint: an email
// may back at most one record across both sets.
func ensureEmailAvailable(ctx context.Context, customers repository.CustomerRepository, staff repository.StaffRepository, email string) error {
	inCustomers, err := customers.EmailExists(ctx, email)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if inCustomers {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	inStaff, err := staff.EmailExists(ctx, email)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if inStaff {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

func validateAccount(email, password, name string) error {
	details := map[string]any{}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		details["email"] = "invalid email"
	}
	if len(password) < auth.MinPasswordLength {
		details["password"] = "too short"
	}
	if strings.TrimSpace(name) == "" {
		details["name"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid account data", details)
	}
	return nil
}
