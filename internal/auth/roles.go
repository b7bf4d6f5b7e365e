package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/policy"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// RouteRedirect is the body of a denied navigation.
type RouteRedirect struct {
	RedirectTo policy.RouteID `json:"redirect_to"`
	Path       string         `json:"path"`
}

// RequireRoute guards an operations panel API group with the role-to-route
// policy. A denied caller is redirected to its home route with 303.
func RequireRoute(route policy.RouteID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		decision := policy.Authorize(identity, route)
		if decision.Allowed {
			return c.Next()
		}
		target := decision.RedirectTo
		c.Location(target.Path())
		return c.Status(fiber.StatusSeeOther).JSON(RouteRedirect{RedirectTo: target, Path: target.Path()})
	}
}

// RequireRole ensures the caller has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowed) > 0 && !lo.Contains(allowed, identity.Role()) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures caller is authenticated (customer or staff).
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
