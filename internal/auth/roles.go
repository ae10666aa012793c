package auth

import "github.com/spec-kit/account-service/internal/domain"

// roleSet answers membership for a guard's allowed roles. An empty set admits any role.
type roleSet map[domain.Role]struct{}

func newRoleSet(allowed []domain.Role) roleSet {
	set := make(roleSet, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return set
}

// permits reports whether role may pass. Unknown roles are simply not members.
func (s roleSet) permits(role domain.Role) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}
