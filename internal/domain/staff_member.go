package domain

import "time"

// StaffMember models an operations panel account. RoleName comes from the
// staff_roles lookup table and is free text maintained by administrators.
type StaffMember struct {
	ID             string
	AuthUID        string
	FullName       string
	CorporateEmail string
	PasswordHash   string
	RoleID         int
	RoleName       string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StaffRole is a row of the staff_roles lookup table.
type StaffRole struct {
	ID   int
	Name string
}

// DefaultStaffRoleNames seeds staff_roles on a fresh database.
var DefaultStaffRoleNames = []string{"Administrador", "Recepcionista", "Despachador", "Repartidor"}
