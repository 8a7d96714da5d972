package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is attached to exactly one user account. RoleSuperAdmin is a
// universal override that bypasses all module permission checks.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleRH         Role = "rh"
	RoleUser       Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleRH, RoleUser:
		return true
	}
	return false
}

type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name,omitempty" db:"first_name"`
	LastName  string    `json:"last_name,omitempty" db:"last_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UserRole struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RolePermission holds the four flags for one (role, module) pair.
// Absence of a row means every flag is false for that role and module.
type RolePermission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Role      Role      `json:"role" db:"role"`
	Module    string    `json:"module" db:"module"`
	CanView   bool      `json:"can_view" db:"can_view"`
	CanCreate bool      `json:"can_create" db:"can_create"`
	CanEdit   bool      `json:"can_edit" db:"can_edit"`
	CanDelete bool      `json:"can_delete" db:"can_delete"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
