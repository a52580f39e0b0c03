package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermBooksRead  Permission = "books:read"
	PermBooksWrite Permission = "books:write"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleReader: {PermBooksRead},
	RoleEditor: {PermBooksRead, PermBooksWrite},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
