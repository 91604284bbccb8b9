package domain

import "time"

// Role enumerates CRM staff roles.
type Role string

const (
	RoleSales   Role = "sales"
	RoleSupport Role = "support"
	RoleOps     Role = "ops"
	RoleAdmin   Role = "admin"
)

// Profile is a CRM user. Read-only from the ticket engine's perspective.
type Profile struct {
	ID           string
	Email        string
	DisplayName  string
	Role         Role
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
