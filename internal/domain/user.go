package domain

import "time"

// User represents a user entity in the system.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRoles contains all valid user roles.
var ValidRoles = []string{"admin", "user", "moderator"}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user has elevated privileges.
// Admins and moderators may edit or delete content they do not own.
func (u *User) IsStaff() bool {
	return u.Role == "admin" || u.Role == "moderator"
}
