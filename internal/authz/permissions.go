package authz

// Permission identifies an atomic capability. The set is closed.
type Permission string

const (
	PermViewUsers   Permission = "view-users"
	PermManageUsers Permission = "manage-users"

	PermViewOrders        Permission = "view-orders"
	PermManageOrders      Permission = "manage-orders"
	PermChangeOrderStatus Permission = "change-order-status"

	PermViewProducts   Permission = "view-products"
	PermManageProducts Permission = "manage-products"
	PermManageStock    Permission = "manage-stock"

	PermViewCategories   Permission = "view-categories"
	PermManageCategories Permission = "manage-categories"

	PermViewInventory   Permission = "view-inventory"
	PermManageInventory Permission = "manage-inventory"

	PermViewConfections   Permission = "view-confections"
	PermManageConfections Permission = "manage-confections"

	PermViewWorkshops   Permission = "view-workshops"
	PermManageWorkshops Permission = "manage-workshops"

	PermViewDispatch   Permission = "view-dispatch"
	PermManageDispatch Permission = "manage-dispatch"

	PermViewReports   Permission = "view-reports"
	PermExportReports Permission = "export-reports"

	PermViewSettings   Permission = "view-settings"
	PermManageSettings Permission = "manage-settings"

	PermUpdateOwnProfile     Permission = "update-own-profile"
	PermRegisterMaterialUsage Permission = "register-material-usage"
	PermConfirmDelivery      Permission = "confirm-delivery"
)

// AllPermissions returns every defined permission.
func AllPermissions() []Permission {
	return []Permission{
		PermViewUsers, PermManageUsers,
		PermViewOrders, PermManageOrders, PermChangeOrderStatus,
		PermViewProducts, PermManageProducts, PermManageStock,
		PermViewCategories, PermManageCategories,
		PermViewInventory, PermManageInventory,
		PermViewConfections, PermManageConfections,
		PermViewWorkshops, PermManageWorkshops,
		PermViewDispatch, PermManageDispatch,
		PermViewReports, PermExportReports,
		PermViewSettings, PermManageSettings,
		PermUpdateOwnProfile, PermRegisterMaterialUsage, PermConfirmDelivery,
	}
}

// rolePermissions is the canonical role to permission mapping. It is
// populated once at package initialization and never mutated afterwards;
// access goes through PermissionsFor, which returns an empty set for any
// role not present here.
var rolePermissions map[Role]map[Permission]struct{}

func init() {
	grants := map[Role][]Permission{
		RoleAdministrator: AllPermissions(),
		RoleReceptionist: {
			PermViewOrders, PermManageOrders, PermChangeOrderStatus,
			PermViewProducts, PermViewCategories,
			PermViewDispatch, PermManageDispatch, PermConfirmDelivery,
			PermViewReports,
			PermUpdateOwnProfile,
		},
		RoleCutter: {
			PermViewOrders, PermChangeOrderStatus,
			PermViewProducts, PermViewInventory,
			PermRegisterMaterialUsage,
			PermUpdateOwnProfile,
		},
		RoleDesigner: {
			PermViewOrders,
			PermViewProducts, PermManageProducts,
			PermViewCategories, PermManageCategories,
			PermViewInventory,
			PermUpdateOwnProfile,
		},
		RoleHelper: {
			PermViewOrders,
			PermViewProducts, PermViewInventory,
			PermRegisterMaterialUsage,
			PermUpdateOwnProfile,
		},
		RoleWorkshopRep: {
			PermViewConfections, PermManageConfections,
			PermViewWorkshops,
			PermViewDispatch, PermConfirmDelivery,
			PermRegisterMaterialUsage,
			PermUpdateOwnProfile,
		},
	}

	rolePermissions = make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		rolePermissions[role] = set
	}
}

// PermissionsFor returns the permission set granted to role. Unknown
// roles yield an empty set, never a permissive default.
func PermissionsFor(role Role) []Permission {
	set, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}
