package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/merchant-crm/internal/api/dto"
	"github.com/spec-kit/merchant-crm/internal/auth"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

// AuthHandler issues access tokens for profiles.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	profile, token, meta, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth":    dto.AuthResponse{Token: token, TokenID: meta.ID, ExpiresAt: meta.ExpiresAt},
			"profile": dto.NewProfileSummary(profile),
		},
	})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing principal")
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileSummary(principal.Profile)})
}
