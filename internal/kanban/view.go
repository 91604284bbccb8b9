package kanban

import (
	"fmt"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// BoardLabel names the board region.
const BoardLabel = "Ticket board"

// View is a snapshot of the board for rendering. Labels carry the
// accessibility text for the board region, each column region and each card.
type View struct {
	Label    string       `json:"label"`
	Preset   Preset       `json:"preset"`
	Updating bool         `json:"updating"`
	Error    string       `json:"error,omitempty"`
	Dragging string       `json:"dragging,omitempty"`
	Total    int          `json:"total"`
	Columns  []ColumnView `json:"columns"`
}

// ColumnView is one state column.
type ColumnView struct {
	Status   domain.TicketStatus `json:"status"`
	Title    string              `json:"title"`
	Label    string              `json:"label"`
	Count    int                 `json:"count"`
	DragOver bool                `json:"drag_over"`
	Cards    []CardView          `json:"cards"`
}

// CardView is one ticket card.
type CardView struct {
	ID       string                `json:"id"`
	Subject  string                `json:"subject"`
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority"`
	Category string                `json:"category,omitempty"`
	Merchant string                `json:"merchant"`
	Assignee string                `json:"assignee"`
	Label    string                `json:"label"`
	Hint     string                `json:"hint"`
	InFlight bool                  `json:"in_flight"`
}

// View filters, groups and labels the current ticket set.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	groups := Group(b.filter.Apply(b.tickets))
	view := View{
		Label:    BoardLabel,
		Preset:   b.preset,
		Updating: b.pending > 0,
		Dragging: b.dragging,
	}
	if b.loadErr != nil {
		view.Error = b.loadErr.Error()
	}

	hint := b.keys.Hint()
	for _, status := range b.preset.Columns() {
		tickets := groups[status]
		col := ColumnView{
			Status:   status,
			Title:    status.Label(),
			Label:    columnLabel(status, len(tickets)),
			Count:    len(tickets),
			DragOver: b.over[status],
			Cards:    make([]CardView, 0, len(tickets)),
		}
		for _, t := range tickets {
			col.Cards = append(col.Cards, card(t, status, hint, t.ID == b.dragging))
		}
		view.Total += col.Count
		view.Columns = append(view.Columns, col)
	}
	return view
}

func columnLabel(status domain.TicketStatus, count int) string {
	noun := "tickets"
	if count == 1 {
		noun = "ticket"
	}
	return fmt.Sprintf("%s, %d %s", status.Label(), count, noun)
}

func card(t domain.EnrichedTicket, column domain.TicketStatus, hint string, inFlight bool) CardView {
	merchant := "Unknown merchant"
	if t.Merchant != nil {
		merchant = t.Merchant.DisplayName
	}
	assignee := "Unassigned"
	if t.AssignedUser != nil {
		assignee = t.AssignedUser.DisplayName
	}
	label := fmt.Sprintf("Ticket %s, %s priority, %s, %s, in %s",
		t.Subject, t.Priority, merchant, assignee, column.Label())
	return CardView{
		ID:       t.ID,
		Subject:  t.Subject,
		Status:   column,
		Priority: t.Priority,
		Category: t.Category,
		Merchant: merchant,
		Assignee: assignee,
		Label:    label,
		Hint:     hint,
		InFlight: inFlight,
	}
}
