package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsForUnknownRole(t *testing.T) {
	assert.Empty(t, PermissionsFor(Role("intern")))
	assert.Empty(t, PermissionsFor(Role("")))
}

func TestPermissionsForIsTotal(t *testing.T) {
	for _, role := range Roles() {
		assert.NotNil(t, rolePermissions[role], "role %s missing from table", role)
	}
}

func TestHasPermissionDeniesUngranted(t *testing.T) {
	for _, role := range Roles() {
		granted := make(map[Permission]struct{})
		for _, p := range PermissionsFor(role) {
			granted[p] = struct{}{}
		}
		for _, p := range AllPermissions() {
			if _, ok := granted[p]; ok {
				assert.True(t, HasPermission(role, p), "%s should hold %s", role, p)
			} else {
				assert.False(t, HasPermission(role, p), "%s should not hold %s", role, p)
			}
		}
	}
}

func TestVacuousCases(t *testing.T) {
	for _, role := range Roles() {
		assert.False(t, HasAny(role, nil))
		assert.True(t, HasAll(role, nil))
	}
}

func TestHasAllImpliesHasAny(t *testing.T) {
	sets := [][]Permission{
		{PermViewOrders},
		{PermViewOrders, PermManageOrders},
		{PermManageUsers, PermViewReports},
		{PermConfirmDelivery, PermRegisterMaterialUsage, PermUpdateOwnProfile},
	}
	for _, role := range Roles() {
		for _, s := range sets {
			if HasAll(role, s) {
				assert.True(t, HasAny(role, s), "HasAll without HasAny for %s over %v", role, s)
			}
		}
	}
}

func TestAdministratorHoldsEverything(t *testing.T) {
	require.True(t, HasAll(RoleAdministrator, AllPermissions()))
	assert.True(t, HasPermission(RoleAdministrator, PermManageUsers))
}

func TestRoleScenarios(t *testing.T) {
	assert.False(t, HasPermission(RoleCutter, PermManageUsers))
	assert.False(t, HasPermission(RoleHelper, PermViewReports))
	assert.True(t, HasAny(RoleReceptionist, []Permission{PermViewOrders, PermManageOrders}))
	assert.True(t, HasAll(RoleReceptionist, []Permission{PermViewOrders, PermManageOrders}))
	assert.True(t, HasPermission(RoleWorkshopRep, PermManageConfections))
	assert.False(t, HasPermission(RoleWorkshopRep, PermManageWorkshops))
}

func TestUnknownRoleNeverGranted(t *testing.T) {
	ghost := Role("ghost")
	for _, p := range AllPermissions() {
		assert.False(t, HasPermission(ghost, p))
	}
	assert.False(t, HasAny(ghost, AllPermissions()))
	// Vacuous truth still applies to the empty list.
	assert.True(t, HasAll(ghost, nil))
	assert.False(t, HasAll(ghost, []Permission{PermViewOrders}))
}
