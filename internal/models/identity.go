package models

// Role is the fixed role of an identity.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	// RoleAnonymous is never stored; it stands for a caller without a session.
	RoleAnonymous Role = "anonymous"
)

// Identity is an authenticated user record. It is immutable once loaded.
type Identity struct {
	ID          string `json:"id" yaml:"id"`
	Username    string `json:"username" yaml:"username"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Role        Role   `json:"role" yaml:"role"`
	Secret      string `json:"-" yaml:"secret"`
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsStudent reports whether the identity holds the student role.
func (i *Identity) IsStudent() bool {
	return i != nil && i.Role == RoleStudent
}
