package domain

import "time"

// Contact is a person at a merchant. At most one contact per merchant has
// IsPrimary set; the store does not enforce this.
type Contact struct {
	ID         string
	MerchantID string
	Name       string
	Email      *string
	Phone      *string
	RoleLabel  *string
	IsPrimary  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContactPatch is a partial contact update. Nil fields are left untouched.
type ContactPatch struct {
	Name      *string
	Email     *string
	Phone     *string
	RoleLabel *string
	IsPrimary *bool
}
