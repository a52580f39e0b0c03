package auth

import "errors"

// Role represents an authorisation tier.
type Role string

const (
	// RoleReader may only query the registry.
	RoleReader Role = "reader"

	// RoleEditor may query and mutate the registry.
	RoleEditor Role = "editor"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleReader, RoleEditor:
		return true
	default:
		return false
	}
}

// Sentinel errors.
var (
	ErrTokenInvalid = errors.New("auth: invalid token")
	ErrTokenMissing = errors.New("auth: token missing")
	ErrForbidden    = errors.New("auth: insufficient permissions")
	ErrInvalidRole  = errors.New("auth: invalid role")
)
