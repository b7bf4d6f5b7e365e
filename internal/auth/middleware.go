package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grocery-service/internal/domain"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

const (
	identityKey = "auth_identity"
	claimsKey   = "auth_claims"
)

// AuthMiddleware validates bearer tokens and restores identities.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionStore
	resolver Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionStore, resolver Resolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	if err := m.authenticate(c, authHeader); err != nil {
		return err
	}
	return c.Next()
}

// Optional restores the identity when a token is present and lets anonymous
// callers through otherwise.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}
	if err := m.authenticate(c, authHeader); err != nil {
		return err
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, err := m.sessions.Get(c.UserContext(), claims.SessionID())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperrors.NewUnauthorized("session expired")
		}
		return apperrors.NewPersistenceError(err)
	}
	if session.Subject != claims.Subject {
		return apperrors.NewUnauthorized("session mismatch")
	}

	identity, err := m.resolver.Resolve(c.UserContext(), SessionCredential{Email: claims.Email})
	if err != nil {
		return err
	}
	if identity.ExternalID() != claims.Subject {
		return apperrors.NewUnauthorized("session subject changed")
	}

	c.Locals(identityKey, identity)
	c.Locals(claimsKey, claims)
	return nil
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// ClaimsFromContext retrieves the token claims of the current request.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
