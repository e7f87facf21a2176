package authz

// HasPermission reports whether role is granted perm. Lookups on
// unknown roles always return false.
func HasPermission(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// HasAny reports whether role holds at least one of perms.
// An empty list is vacuously false.
func HasAny(role Role, perms []Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether role holds every permission in perms.
// An empty list is vacuously true.
func HasAll(role Role, perms []Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}
