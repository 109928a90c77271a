package models

import (
	"time"
)

// User represents an administrator account bound to an institution.
// InitialPassword keeps the generated/accepted plaintext for first-login
// display only; it is written once at creation and never updated.
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	InitialPassword string    `json:"initial_password,omitempty"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Role            string    `json:"role"`
	InstitutionID   int64     `json:"institution_id"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Admin role constants mapped from institution type keys
const (
	RoleSchoolAdmin = "schooladmin"
	RoleRegionAdmin = "regionadmin"
	RoleSectorAdmin = "sektoradmin"
)
