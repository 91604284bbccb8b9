package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/merchant-crm/internal/api/dto"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/service"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

// ContactsHandler manages merchant contact endpoints.
type ContactsHandler struct {
	service ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// ListContacts GET /merchants/:id/contacts.
func (h *ContactsHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.service.ListContacts(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactResponses(contacts)})
}

// CreateContact POST /merchants/:id/contacts.
func (h *ContactsHandler) CreateContact(c *fiber.Ctx) error {
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	contact, err := h.service.CreateContact(c.UserContext(), service.ContactCreateInput{
		MerchantID: c.Params("id"),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		RoleLabel:  req.RoleLabel,
		IsPrimary:  req.IsPrimary,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// UpdateContact PATCH /contacts/:id.
func (h *ContactsHandler) UpdateContact(c *fiber.Ctx) error {
	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	contact, err := h.service.UpdateContact(c.UserContext(), c.Params("id"), domain.ContactPatch{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		RoleLabel: req.RoleLabel,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

// SetPrimary POST /contacts/:id/primary.
func (h *ContactsHandler) SetPrimary(c *fiber.Ctx) error {
	var req dto.SetPrimaryRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.MerchantID) == "" {
		return apperrors.NewValidationError("merchant_id required", map[string]any{"field": "merchant_id"})
	}
	contact, err := h.service.SetPrimary(c.UserContext(), c.Params("id"), req.MerchantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactResponse(contact)})
}

func contactResponses(rows []domain.Contact) []dto.ContactResponse {
	out := make([]dto.ContactResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewContactResponse(&rows[i]))
	}
	return out
}
