package domain

// Role enumerates account roles. Roles have no hierarchy.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleCustomer, RoleManager}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleManager:
		return true
	}
	return false
}

// Identity is the caller payload carried inside signed credentials.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
