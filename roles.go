package content

// Authorize applies the flat role guard: an empty required set allows
// any authenticated principal; otherwise the principal's role name must
// be a member of the set. There is no hierarchy and no inheritance.
// Callers must have authenticated the principal first; a missing
// principal is denied before this check ever runs.
func Authorize(roleName string, requiredRoles []string) bool {
	if len(requiredRoles) == 0 {
		return true
	}

	for _, required := range requiredRoles {
		if roleName == required {
			return true
		}
	}

	return false
}

// AuthorizeClaims is the AuthClaims flavored guard used by middleware.
func AuthorizeClaims(claims AuthClaims, requiredRoles []string) bool {
	if claims == nil {
		return false
	}
	return Authorize(claims.Role(), requiredRoles)
}
