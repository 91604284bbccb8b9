package dto

import (
	"time"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// LoginRequest payload for profile login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileSummary is the public view of a profile.
type ProfileSummary struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

// NewProfileSummary maps a profile; nil stays nil.
func NewProfileSummary(p *domain.Profile) *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName, Role: p.Role}
}
