package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/merchant-crm/internal/auth"
	"github.com/spec-kit/merchant-crm/internal/config"
	"github.com/spec-kit/merchant-crm/internal/domain"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

// ProfileLookup is the slice of the profile repository login needs.
type ProfileLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

// AuthService coordinates profile login.
type AuthService struct {
	profiles ProfileLookup
	tokenMgr *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, profiles ProfileLookup) *AuthService {
	return &AuthService{
		profiles: profiles,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Login verifies credentials and issues a role-bearing access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, domain.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", domain.Token{}, apperrors.NewValidationError("email and password are required", nil)
	}
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", domain.Token{}, err
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}
	signed, token, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, "", domain.Token{}, err
	}
	return profile, signed, token, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
