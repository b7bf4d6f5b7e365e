package dto

import (
	"time"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// StaffCreateRequest payload.
type StaffCreateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// StaffActiveRequest toggles an account.
type StaffActiveRequest struct {
	Active *bool `json:"active"`
}

// StaffResponse is a staff account without its password hash.
type StaffResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	RoleID    int         `json:"role_id"`
	RoleName  string      `json:"role_name"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}

// StaffRoleResponse is a row of the role catalog.
type StaffRoleResponse struct {
	ID   int         `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}
