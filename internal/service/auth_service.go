package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/policy"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// AuthService coordinates registration, sign-in, sign-out and password
// recovery.
type AuthService struct {
	customers  repository.CustomerRepository
	staff      repository.StaffRepository
	resolver   auth.Resolver
	tokens     *auth.TokenManager
	sessions   auth.SessionStore
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	CustomerRepo repository.CustomerRepository
	StaffRepo    repository.StaffRepository
	Resolver     auth.Resolver
	Tokens       *auth.TokenManager
	Sessions     auth.SessionStore
	ResetRepo    repository.PasswordResetRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// RegisterInput describes a customer sign-up.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// AuthResult is a signed-in identity.
type AuthResult struct {
	Identity  domain.Identity
	Token     string
	SessionID string
	ExpiresAt time.Time
	HomeRoute policy.RouteID
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		customers:  deps.CustomerRepo,
		staff:      deps.StaffRepo,
		resolver:   deps.Resolver,
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		resets:     deps.ResetRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
		now:        time.Now,
		logger:     logger,
	}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := validateAccount(email, input.Password, input.FirstName); err != nil {
		return nil, err
	}
	if err := ensureEmailAvailable(ctx, s.customers, s.staff, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	customer := &domain.Customer{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	s.logger.Info("customer registered", zap.String("customer_id", customer.ID))

	return s.signIn(ctx, domain.CustomerIdentity{Customer: *customer})
}

// Login resolves a password credential and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.resolver.Resolve(ctx, auth.PasswordCredential{Email: email, Secret: password})
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, identity)
}

// Logout deletes the session; the token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewUnauthorized("no session")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

func (s *AuthService) signIn(ctx context.Context, identity domain.Identity) (*AuthResult, error) {
	token, claims, err := s.tokens.GenerateToken(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	session := auth.SessionFromClaims(claims)
	if err := s.sessions.Save(ctx, session, s.tokens.TTL()); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &AuthResult{
		Identity:  identity,
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		HomeRoute: policy.HomeRouteFor(identity.Role()),
	}, nil
}
