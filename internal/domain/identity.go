package domain

import "strings"

// Role is the normalized role tag carried by every resolved identity.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleDispatcher   Role = "dispatcher"
	RoleCourier      Role = "courier"
	RoleStaff        Role = "staff"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleCustomer, RoleAdmin, RoleReceptionist, RoleDispatcher, RoleCourier, RoleStaff}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether r belongs to the operations panel.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleCustomer
}

// BackingKind names the record set an identity was resolved from.
type BackingKind string

const (
	BackingCustomerRecord BackingKind = "customer_record"
	BackingStaffRecord    BackingKind = "staff_record"
	BackingNone           BackingKind = "none"
)

// RoleFromStaffRoleName maps a free-text staff role name to a role tag by
// case-insensitive substring match. Checks run in a fixed order.
func RoleFromStaffRoleName(name string) Role {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "admin"):
		return RoleAdmin
	case strings.Contains(n, "recep"):
		return RoleReceptionist
	case strings.Contains(n, "despach"):
		return RoleDispatcher
	case strings.Contains(n, "repart"), strings.Contains(n, "delivery"):
		return RoleCourier
	default:
		return RoleStaff
	}
}

// Identity is the resolved caller. It is either a CustomerIdentity or a
// StaffIdentity; downstream code switches on the concrete type.
type Identity interface {
	ExternalID() string
	Email() string
	Role() Role
	BackingRecordID() string
	BackingKind() BackingKind
	isIdentity()
}

// CustomerIdentity is backed by a customers row.
type CustomerIdentity struct {
	Customer Customer
}

func (c CustomerIdentity) ExternalID() string       { return c.Customer.AuthUID }
func (c CustomerIdentity) Email() string            { return c.Customer.Email }
func (c CustomerIdentity) Role() Role               { return RoleCustomer }
func (c CustomerIdentity) BackingRecordID() string  { return c.Customer.ID }
func (c CustomerIdentity) BackingKind() BackingKind { return BackingCustomerRecord }
func (CustomerIdentity) isIdentity()                {}

// StaffIdentity is backed by a staff_members row; its role is derived once
// from the joined role name.
type StaffIdentity struct {
	Staff StaffMember
	role  Role
}

// NewStaffIdentity derives the role and wraps the staff record.
func NewStaffIdentity(staff StaffMember) StaffIdentity {
	return StaffIdentity{Staff: staff, role: RoleFromStaffRoleName(staff.RoleName)}
}

func (s StaffIdentity) ExternalID() string       { return s.Staff.AuthUID }
func (s StaffIdentity) Email() string            { return s.Staff.CorporateEmail }
func (s StaffIdentity) Role() Role               { return s.role }
func (s StaffIdentity) BackingRecordID() string  { return s.Staff.ID }
func (s StaffIdentity) BackingKind() BackingKind { return BackingStaffRecord }
func (StaffIdentity) isIdentity()                {}

// ActorKind returns the audit actor kind of an identity.
func ActorKind(id Identity) BackingKind {
	if id == nil {
		return BackingNone
	}
	return id.BackingKind()
}
