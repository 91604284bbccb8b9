package domain

import (
	"strings"
	"time"
)

// StatusOrder is the left-to-right order of ticket states. Any state may move
// to any other; the order only drives adjacent keyboard moves and column layout.
var StatusOrder = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaitingOnMerchant,
	TicketStatusResolved,
	TicketStatusClosed,
}

var statusLabels = map[TicketStatus]string{
	TicketStatusOpen:              "Open",
	TicketStatusInProgress:        "In Progress",
	TicketStatusWaitingOnMerchant: "Waiting on Merchant",
	TicketStatusResolved:          "Resolved",
	TicketStatusClosed:            "Closed",
}

// ParseTicketStatus normalizes and validates a status value.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Valid reports whether s is one of the five lifecycle states.
func (s TicketStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable column title.
func (s TicketStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsResolution reports whether entering s stamps resolved_at.
func (s TicketStatus) IsResolution() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// OrDefault maps missing or unknown statuses to open.
func (s TicketStatus) OrDefault() TicketStatus {
	if s.Valid() {
		return s
	}
	return TicketStatusOpen
}

// StepStatus moves delta positions along StatusOrder, clamped at both ends.
// The boolean is false when the move would leave the list, in which case the
// current status is returned unchanged.
func StepStatus(current TicketStatus, delta int) (TicketStatus, bool) {
	idx := -1
	for i, s := range StatusOrder {
		if s == current.OrDefault() {
			idx = i
			break
		}
	}
	next := idx + delta
	if delta == 0 || next < 0 || next >= len(StatusOrder) {
		return current, false
	}
	return StatusOrder[next], true
}

// StatusPatch is the single update written for a status transition.
type StatusPatch struct {
	Status     TicketStatus
	ResolvedAt *time.Time
	UpdatedAt  time.Time
}

// NewStatusPatch builds the transition to status at now. resolved_at is set
// only when entering resolved or closed and is otherwise absent, so a re-opened
// ticket keeps its previous stamp.
func NewStatusPatch(status TicketStatus, now time.Time) (StatusPatch, error) {
	if !status.Valid() {
		return StatusPatch{}, ErrInvalidStatus
	}
	patch := StatusPatch{Status: status, UpdatedAt: now}
	if status.IsResolution() {
		stamp := now
		patch.ResolvedAt = &stamp
	}
	return patch, nil
}

// Fields returns the changed-field payload in store column names.
func (p StatusPatch) Fields() map[string]any {
	fields := map[string]any{
		"status":     string(p.Status),
		"updated_at": p.UpdatedAt,
	}
	if p.ResolvedAt != nil {
		fields["resolved_at"] = *p.ResolvedAt
	}
	return fields
}
