package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

var errResetTokenInvalid = apperrors.NewValidationError("reset token invalid or expired", map[string]any{"token": "invalid"})

// PasswordReset is an issued reset request. Token is empty when the email
// matched no active account.
type PasswordReset struct {
	Token     string
	ExpiresAt time.Time
}

// resetSubject is the record a reset applies to.
type resetSubject struct {
	kind  domain.BackingKind
	id    string
	email string
}

// RequestPasswordReset issues a reset token for the account behind email,
// looking up customers before staff like sign-in does. Unknown and disabled
// accounts get an empty result so the response does not reveal which
// emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*PasswordReset, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": "invalid email"})
	}

	subject, err := s.findResetSubject(ctx, email)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		s.logger.Info("password reset requested for unknown or disabled account")
		return &PasswordReset{}, nil
	}

	token, hash := auth.NewResetToken()
	record := &repository.PasswordResetToken{
		SubjectKind: subject.kind,
		SubjectID:   subject.id,
		TokenHash:   hash,
		ExpiresAt:   s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, record); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	s.logger.Info("password reset issued",
		zap.String("subject_kind", string(subject.kind)),
		zap.String("subject_id", subject.id))

	if s.dispatcher != nil {
		subjectID := subject.id
		err := s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPasswordResetRequested,
			Actor:     events.Actor{Kind: subject.kind, ID: &subjectID},
			Timestamp: s.now(),
			Payload: events.PasswordResetRequestedPayload{
				Email:     subject.email,
				Kind:      subject.kind,
				Token:     token,
				ExpiresAt: record.ExpiresAt,
			},
		})
		if err != nil {
			s.logger.Warn("publish password reset event failed", zap.Error(err))
		}
	}
	return &PasswordReset{Token: token, ExpiresAt: record.ExpiresAt}, nil
}

// ConfirmPasswordReset sets a new password using a reset token. A token
// works once; it is consumed before the password is written so two
// concurrent confirmations cannot both succeed.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("invalid password", map[string]any{"password": "too short"})
	}
	if token == "" {
		return errResetTokenInvalid
	}

	record, err := s.resets.GetByHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errResetTokenInvalid
		}
		return apperrors.NewPersistenceError(err)
	}
	if !record.Usable(s.now()) {
		return errResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.resets.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errResetTokenInvalid
		}
		return apperrors.NewPersistenceError(err)
	}
	if err := s.setPassword(ctx, record.SubjectKind, record.SubjectID, hash); err != nil {
		return err
	}
	s.logger.Info("password reset completed",
		zap.String("subject_kind", string(record.SubjectKind)),
		zap.String("subject_id", record.SubjectID))
	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, current, newPassword string) error {
	if identity == nil {
		return apperrors.NewUnauthorized("sign-in required")
	}
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("invalid password", map[string]any{"password": "too short"})
	}

	kind, id := identity.BackingKind(), identity.BackingRecordID()
	var storedHash string
	switch kind {
	case domain.BackingCustomerRecord:
		customer, err := s.customers.GetByID(ctx, id)
		if err != nil {
			return apperrors.MapRepoError(err, "customer", map[string]any{"customer_id": id})
		}
		storedHash = customer.PasswordHash
	case domain.BackingStaffRecord:
		member, err := s.staff.GetByID(ctx, id)
		if err != nil {
			return apperrors.MapRepoError(err, "staff member", map[string]any{"staff_id": id})
		}
		storedHash = member.PasswordHash
	default:
		return apperrors.NewUnauthorized("sign-in required")
	}
	if err := auth.ComparePassword(storedHash, current); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.setPassword(ctx, kind, id, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("subject_kind", string(kind)), zap.String("subject_id", id))
	return nil
}

func (s *AuthService) findResetSubject(ctx context.Context, email string) (*resetSubject, error) {
	customer, err := s.customers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !customer.Active {
			return nil, nil
		}
		return &resetSubject{kind: domain.BackingCustomerRecord, id: customer.ID, email: customer.Email}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		s.logger.Error("customer lookup failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	member, err := s.staff.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !member.Active {
			return nil, nil
		}
		return &resetSubject{kind: domain.BackingStaffRecord, id: member.ID, email: member.CorporateEmail}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		s.logger.Error("staff lookup failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	return nil, nil
}

func (s *AuthService) setPassword(ctx context.Context, kind domain.BackingKind, id, hash string) error {
	switch kind {
	case domain.BackingCustomerRecord:
		if err := s.customers.UpdatePassword(ctx, id, hash); err != nil {
			return apperrors.MapRepoError(err, "customer", map[string]any{"customer_id": id})
		}
	case domain.BackingStaffRecord:
		member, err := s.staff.GetByID(ctx, id)
		if err != nil {
			return apperrors.MapRepoError(err, "staff member", map[string]any{"staff_id": id})
		}
		member.PasswordHash = hash
		if err := s.staff.Update(ctx, member); err != nil {
			return apperrors.MapRepoError(err, "staff member", map[string]any{"staff_id": id})
		}
	default:
		return apperrors.NewValidationError("unsupported account kind", map[string]any{"kind": string(kind)})
	}
	return nil
}
