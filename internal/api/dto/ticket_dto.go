package dto

import (
	"time"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	MerchantID  string  `json:"merchant_id"`
	AssignedTo  *string `json:"assigned_to"`
}

// UpdateTicketRequest is a partial edit. Unassign clears assigned_to.
type UpdateTicketRequest struct {
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	AssignedTo  *string `json:"assigned_to"`
	Unassign    bool    `json:"unassign"`
}

// TransitionRequest payload for POST /tickets/:id/status.
type TransitionRequest struct {
	Status string `json:"status"`
}

// MerchantSummary is the merchant relation attached to enriched rows.
type MerchantSummary struct {
	ID          string                `json:"id"`
	DisplayName string                `json:"display_name"`
	LegalName   string                `json:"legal_name"`
	Status      domain.MerchantStatus `json:"status"`
}

// NewMerchantSummary maps a merchant; nil stays nil.
func NewMerchantSummary(m *domain.Merchant) *MerchantSummary {
	if m == nil {
		return nil
	}
	return &MerchantSummary{ID: m.ID, DisplayName: m.DisplayName, LegalName: m.LegalName, Status: m.Status}
}

// TicketResponse is an enriched ticket.
type TicketResponse struct {
	ID           string                `json:"id"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     string                `json:"category"`
	MerchantID   string                `json:"merchant_id"`
	AssignedTo   *string               `json:"assigned_to"`
	CreatedBy    string                `json:"created_by"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	AssignedUser *ProfileSummary       `json:"assigned_user"`
	Merchant     *MerchantSummary      `json:"merchant"`
}

// NewTicketResponse maps an enriched ticket.
func NewTicketResponse(t *domain.EnrichedTicket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Subject:      t.Subject,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		Category:     t.Category,
		MerchantID:   t.MerchantID,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
		ResolvedAt:   t.ResolvedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		AssignedUser: NewProfileSummary(t.AssignedUser),
		Merchant:     NewMerchantSummary(t.Merchant),
	}
}

// NewTicketResponses maps a list of enriched tickets.
func NewTicketResponses(rows []domain.EnrichedTicket) []TicketResponse {
	out := make([]TicketResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewTicketResponse(&rows[i]))
	}
	return out
}

// DropRequest is a board drop: the transported ticket id and the target column.
type DropRequest struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// KeyRequest is a key press on a focused card.
type KeyRequest struct {
	TicketID string `json:"ticket_id"`
	Key      string `json:"key"`
}

// PickUpRequest starts a drag of a card.
type PickUpRequest struct {
	TicketID string `json:"ticket_id"`
}

// HoverRequest names the column a drag is entering or leaving.
type HoverRequest struct {
	Status string `json:"status"`
}
