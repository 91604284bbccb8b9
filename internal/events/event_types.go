package events

import (
	"time"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketUpdated         EventType = "ticket_updated"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventContactCreated        EventType = "contact_created"
	EventContactPrimaryChanged EventType = "contact_primary_changed"
)

// Actor identifies the profile behind an event. Nil ProfileID means a system action.
type Actor struct {
	ProfileID *string `json:"profile_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id"`
	MerchantID string    `json:"merchant_id,omitempty"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject    string                `json:"subject"`
	Priority   domain.TicketPriority `json:"priority"`
	Category   string                `json:"category,omitempty"`
	AssignedTo *string               `json:"assigned_to,omitempty"`
}

// TicketUpdatedPayload lists the columns a partial update touched.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus  domain.TicketStatus `json:"new_status"`
	ResolvedAt *time.Time          `json:"resolved_at,omitempty"`
}

// ContactCreatedPayload payload.
type ContactCreatedPayload struct {
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
}

// ContactPrimaryChangedPayload payload. Demoted counts sibling rows flipped to false.
type ContactPrimaryChangedPayload struct {
	Demoted int64 `json:"demoted"`
}
