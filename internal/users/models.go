package users

import "time"

const (
	RoleMaster = "Master"
	RoleAdmin  = "Admin"
	RoleUser   = "Usuario"
)

// ValidRole reports whether role is one of the three known access levels.
func ValidRole(role string) bool {
	return role == RoleMaster || role == RoleAdmin || role == RoleUser
}

type User struct {
	ID           string
	Name         string
	Email        string
	Registration string
	Department   string
	Position     string
	Role         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}
