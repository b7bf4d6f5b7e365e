package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/policy"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

type stubResolver struct {
	identities map[string]domain.Identity
	err        error
}

func (r stubResolver) Resolve(_ context.Context, cred Credential) (domain.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	id, ok := r.identities[cred.CredentialEmail()]
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}
	return id, nil
}

func testApp(mw *AuthMiddleware, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		return c.SendString(string(identity.Role()))
	})
	app.Get("/protected", handlers...)
	return app
}

func signIn(t *testing.T, tm *TokenManager, store SessionStore, id domain.Identity) string {
	t.Helper()
	token, claims, err := tm.GenerateToken(id)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), SessionFromClaims(claims), tm.TTL()))
	return token
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareRestoresIdentity(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store := NewMemorySessionStore()
	customer := testCustomer()
	mw := NewAuthMiddleware(tm, store, stubResolver{identities: map[string]domain.Identity{customer.Email(): customer}})
	app := testApp(mw)

	token := signIn(t, tm, store, customer)
	assert.Equal(t, http.StatusOK, get(t, app, token).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "garbage").StatusCode)
}

func TestMiddlewareRejectsSignedOutSession(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store := NewMemorySessionStore()
	customer := testCustomer()
	mw := NewAuthMiddleware(tm, store, stubResolver{identities: map[string]domain.Identity{customer.Email(): customer}})
	app := testApp(mw)

	token := signIn(t, tm, store, customer)
	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), claims.SessionID()))

	assert.Equal(t, http.StatusUnauthorized, get(t, app, token).StatusCode)
}

func TestMiddlewareRefusesDisabledAccount(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store := NewMemorySessionStore()
	mw := NewAuthMiddleware(tm, store, stubResolver{err: apperrors.ErrAccountDisabled})
	app := testApp(mw)

	token := signIn(t, tm, store, testCustomer())
	assert.Equal(t, http.StatusForbidden, get(t, app, token).StatusCode)
}

func TestRequireRouteRedirectsHome(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store := NewMemorySessionStore()
	courier := domain.NewStaffIdentity(domain.StaffMember{
		ID:             "staff-1",
		AuthUID:        "uid-staff",
		CorporateEmail: "luis@store.pe",
		RoleName:       "Repartidor",
		Active:         true,
	})
	mw := NewAuthMiddleware(tm, store, stubResolver{identities: map[string]domain.Identity{courier.Email(): courier}})
	app := testApp(mw, RequireRoute(policy.RouteAdminInventory))

	resp := get(t, app, signIn(t, tm, store, courier))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/delivery", resp.Header.Get("Location"))
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	store := NewMemorySessionStore()
	customer := testCustomer()
	mw := NewAuthMiddleware(tm, store, stubResolver{identities: map[string]domain.Identity{customer.Email(): customer}})

	denied := testApp(mw, RequireRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, get(t, denied, signIn(t, tm, store, customer)).StatusCode)

	allowed := testApp(mw, RequireRole(domain.RoleCustomer))
	assert.Equal(t, http.StatusOK, get(t, allowed, signIn(t, tm, store, customer)).StatusCode)
}
