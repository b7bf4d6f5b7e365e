package dto

import (
	"time"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/policy"
)

// RegisterRequest payload for new customers.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// LoginRequest payload for login. Customers and staff share it.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse describes the signed-in caller.
type IdentityResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Role        domain.Role        `json:"role"`
	BackingKind domain.BackingKind `json:"backing_kind"`
	HomeRoute   policy.RouteID     `json:"home_route"`
	HomePath    string             `json:"home_path"`
}

// RouteDecisionResponse answers a navigation check.
type RouteDecisionResponse struct {
	Route      policy.RouteID `json:"route"`
	Allowed    bool           `json:"allowed"`
	RedirectTo policy.RouteID `json:"redirect_to,omitempty"`
	Path       string         `json:"path,omitempty"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for signed-in password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
