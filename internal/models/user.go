package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleFree  Role = "free"
	RolePro   Role = "pro"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether s is one of the accepted role values.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleFree, RolePro, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID
	Username  string
	Role      Role
	CreatedAt time.Time
}
