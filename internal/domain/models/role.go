package models

import (
	"time"
)

// PermissionWildcard grants every permission and short-circuits all
// permission checks. It does not bypass role-name checks.
const PermissionWildcard = "*"

// DefaultRoleName is the role assigned at registration when none is given.
const DefaultRoleName = "user"

// Role is a named permission bundle. Name is the machine identifier
// (lowercase and underscores); DisplayName is for humans.
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Description string    `json:"description" db:"description"`
	Permissions []string  `json:"permissions" db:"permissions"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasWildcard reports whether the role carries the wildcard permission.
func (r *Role) HasWildcard() bool {
	for _, p := range r.Permissions {
		if p == PermissionWildcard {
			return true
		}
	}
	return false
}
