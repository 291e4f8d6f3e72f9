package auth

// The role model is deliberately flat: two values, no hierarchy. Route
// checks are exact set membership, so an admin is not implicitly allowed
// through a user-only gate.

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// RoleInSet reports whether role is a member of the given set
func RoleInSet(role UserRole, set []UserRole) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
