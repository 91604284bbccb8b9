package domain

import (
	"errors"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusWaitingOnMerchant TicketStatus = "waiting_on_merchant"
	TicketStatusResolved          TicketStatus = "resolved"
	TicketStatusClosed            TicketStatus = "closed"
)

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var (
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidPriority = errors.New("invalid ticket priority")
)

// Ticket is a merchant support request.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    string
	MerchantID  string
	AssignedTo  *string
	CreatedBy   string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EnrichedTicket is a read-time view of a ticket with its relations resolved.
// It is never persisted.
type EnrichedTicket struct {
	Ticket
	AssignedUser *Profile
	Merchant     *Merchant
}

// TicketPatch is a partial ticket update. Nil fields are left untouched.
type TicketPatch struct {
	Subject     *string
	Description *string
	Priority    *TicketPriority
	Category    *string
	AssignedTo  *string
	// ClearAssignee unassigns the ticket; it wins over AssignedTo.
	ClearAssignee bool
	UpdatedAt     time.Time
}

// Empty reports whether the patch carries no field changes.
func (p TicketPatch) Empty() bool {
	return p.Subject == nil && p.Description == nil && p.Priority == nil &&
		p.Category == nil && p.AssignedTo == nil && !p.ClearAssignee
}

// ParseTicketPriority normalizes and validates a priority value.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	p := TicketPriority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}
