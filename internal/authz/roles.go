// Package authz defines the static role and permission model and the
// pure evaluation functions used by the access gate.
package authz

// Role identifies one of the fixed staff roles. The set is closed:
// roles are defined here and never created at runtime.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleReceptionist  Role = "receptionist"
	RoleCutter        Role = "cutter"
	RoleDesigner      Role = "designer"
	RoleHelper        Role = "helper"
	RoleWorkshopRep   Role = "workshop-representative"
)

// Roles returns the closed set of defined roles.
func Roles() []Role {
	return []Role{
		RoleAdministrator,
		RoleReceptionist,
		RoleCutter,
		RoleDesigner,
		RoleHelper,
		RoleWorkshopRep,
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleReceptionist, RoleCutter, RoleDesigner, RoleHelper, RoleWorkshopRep:
		return true
	}
	return false
}
