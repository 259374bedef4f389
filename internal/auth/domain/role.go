package domain

// Built-in role names. Users get RoleUser on registration; the bootstrap
// admin additionally gets RoleAdmin.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultRoles is the role set assigned to newly registered users.
func DefaultRoles() []string {
	return []string{RoleUser}
}

// AdminRoles is the role set of the bootstrap admin account.
func AdminRoles() []string {
	return []string{RoleAdmin, RoleUser}
}
