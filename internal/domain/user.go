package domain

import (
	"time"
)

// Role names recognized by route authorization.
const (
	RoleAdministrator = "ADMINISTRADOR"
	RoleProsecutor    = "FISCAL"
)

// User is an authenticated application user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	PersonID     *int64
	DeletedAt    *time.Time
}

// IsActive reports whether the user has not been soft-deleted.
func (u *User) IsActive() bool {
	return u.DeletedAt == nil
}
