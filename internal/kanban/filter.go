package kanban

import (
	"strings"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// Preset selects which state columns a board shows.
type Preset string

const (
	PresetAllStates  Preset = "all"
	PresetActiveOnly Preset = "active"
)

var activeStates = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusWaitingOnMerchant,
}

// Columns returns the ordered states shown by p. Unknown presets show all states.
func (p Preset) Columns() []domain.TicketStatus {
	if p == PresetActiveOnly {
		return append([]domain.TicketStatus(nil), activeStates...)
	}
	return append([]domain.TicketStatus(nil), domain.StatusOrder...)
}

// ParsePreset maps a caller flag to a preset.
func ParsePreset(activeOnly bool) Preset {
	if activeOnly {
		return PresetActiveOnly
	}
	return PresetAllStates
}

// Filter narrows the board input before grouping. Zero values match everything.
type Filter struct {
	Priority   domain.TicketPriority
	Category   string
	AssigneeID string
	Search     string
}

// Match reports whether t passes every set predicate. Search is a
// case-insensitive substring match over subject, description and merchant name.
func (f Filter) Match(t domain.EnrichedTicket) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if f.AssigneeID != "" && (t.AssignedTo == nil || *t.AssignedTo != f.AssigneeID) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		haystack := []string{t.Subject, t.Description}
		if t.Merchant != nil {
			haystack = append(haystack, t.Merchant.DisplayName)
		}
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the tickets matching f, preserving order.
func (f Filter) Apply(tickets []domain.EnrichedTicket) []domain.EnrichedTicket {
	out := make([]domain.EnrichedTicket, 0, len(tickets))
	for _, t := range tickets {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Group partitions tickets by status over all five states. Missing or unknown
// statuses land in open. Every state has an entry, possibly empty.
func Group(tickets []domain.EnrichedTicket) map[domain.TicketStatus][]domain.EnrichedTicket {
	groups := make(map[domain.TicketStatus][]domain.EnrichedTicket, len(domain.StatusOrder))
	for _, s := range domain.StatusOrder {
		groups[s] = []domain.EnrichedTicket{}
	}
	for _, t := range tickets {
		s := t.Status.OrDefault()
		groups[s] = append(groups[s], t)
	}
	return groups
}
