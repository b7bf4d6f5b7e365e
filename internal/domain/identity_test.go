package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromStaffRoleName(t *testing.T) {
	cases := map[string]Role{
		"Administrador":      RoleAdmin,
		"SUPER ADMIN":        RoleAdmin,
		"Recepcionista":      RoleReceptionist,
		"Despachador Senior": RoleDispatcher,
		"despachador":        RoleDispatcher,
		"Repartidor":         RoleCourier,
		"Delivery Driver":    RoleCourier,
		"Contador":           RoleStaff,
		"":                   RoleStaff,
	}
	for name, want := range cases {
		assert.Equal(t, want, RoleFromStaffRoleName(name), name)
	}
}

func TestIdentityVariants(t *testing.T) {
	var id Identity = CustomerIdentity{Customer: Customer{ID: "c1", AuthUID: "u1", Email: "a@x.com"}}
	assert.Equal(t, RoleCustomer, id.Role())
	assert.Equal(t, BackingCustomerRecord, id.BackingKind())
	assert.Equal(t, "c1", id.BackingRecordID())
	assert.Equal(t, "u1", id.ExternalID())

	id = NewStaffIdentity(StaffMember{ID: "s1", AuthUID: "u2", CorporateEmail: "d@corp.com", RoleName: "Despachador"})
	assert.Equal(t, RoleDispatcher, id.Role())
	assert.Equal(t, BackingStaffRecord, id.BackingKind())
	assert.Equal(t, "d@corp.com", id.Email())

	assert.Equal(t, BackingNone, ActorKind(nil))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, RoleCourier.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
	assert.False(t, Role("ghost").Valid())
}
