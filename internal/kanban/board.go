package kanban

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// Source lists the tickets a board shows.
type Source interface {
	BoardTickets(ctx context.Context) ([]domain.EnrichedTicket, error)
}

// Mover applies a status transition and returns the stored ticket.
type Mover interface {
	TransitionStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.EnrichedTicket, error)
}

var (
	ErrUnknownTicket = errors.New("kanban: ticket not on board")
	ErrUnknownColumn = errors.New("kanban: column not on board")
)

// Options configures a Board.
type Options struct {
	Preset Preset
	Filter Filter
	Keys   *KeyMap
	Logger *zap.Logger
}

// KeyResult reports what a key press did.
type KeyResult struct {
	Action     KeyAction           `json:"action"`
	From       domain.TicketStatus `json:"from,omitempty"`
	To         domain.TicketStatus `json:"to,omitempty"`
	Moved      bool                `json:"moved"`
	OpenDetail string              `json:"open_detail,omitempty"`
}

// Board groups tickets into state columns and turns drag/drop and keyboard
// gestures into status transitions. Column membership is always derived from
// the last fetched ticket set.
//
// Transitions run one at a time; a gesture made while one is in flight waits
// behind it. Reads and drag gestures never wait on a transition.
type Board struct {
	source Source
	mover  Mover
	preset Preset
	keys   KeyMap
	logger *zap.Logger

	mutate sync.Mutex

	mu       sync.RWMutex
	filter   Filter
	tickets  []domain.EnrichedTicket
	loadErr  error
	dragging string
	over     map[domain.TicketStatus]bool
	pending  int
}

// NewBoard builds a Board. Call Refresh to load tickets.
func NewBoard(source Source, mover Mover, opts Options) *Board {
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	preset := opts.Preset
	if preset == "" {
		preset = PresetAllStates
	}
	return &Board{
		source: source,
		mover:  mover,
		preset: preset,
		keys:   keys,
		logger: logger,
		filter: opts.Filter,
		over:   make(map[domain.TicketStatus]bool),
	}
}

// Refresh re-fetches the ticket set. On failure the previous set is kept and
// the error is surfaced through View.
func (b *Board) Refresh(ctx context.Context) error {
	tickets, err := b.source.BoardTickets(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.loadErr = err
		return err
	}
	b.tickets = tickets
	b.loadErr = nil
	return nil
}

// SetFilter replaces the active filter.
func (b *Board) SetFilter(f Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

// Updating reports whether a transition is queued or in flight.
func (b *Board) Updating() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pending > 0
}

// Dragging returns the id of the picked-up ticket, if any.
func (b *Board) Dragging() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dragging
}

// PickUp marks a ticket as in flight. Visual only.
func (b *Board) PickUp(ticketID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragging = ticketID
}

// DragEnter marks a column as hovered.
func (b *Board) DragEnter(status domain.TicketStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.over[status] = true
}

// DragLeave clears a column's hover state.
func (b *Board) DragLeave(status domain.TicketStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.over, status)
}

// DragEnd cancels a drag without a drop.
func (b *Board) DragEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragging = ""
	b.over = make(map[domain.TicketStatus]bool)
}

// Drop handles a drop of payload (a ticket id) onto the column for status.
// Dropping onto the ticket's current column issues no request. The boolean
// reports whether a transition was applied.
func (b *Board) Drop(ctx context.Context, status domain.TicketStatus, payload string) (bool, error) {
	b.mu.Lock()
	b.dragging = ""
	delete(b.over, status)
	ticket, found := b.find(payload)
	b.mu.Unlock()

	if !b.hasColumn(status) {
		return false, ErrUnknownColumn
	}
	if !found {
		return false, ErrUnknownTicket
	}
	if ticket.Status.OrDefault() == status {
		return false, nil
	}
	if err := b.move(ctx, ticket.ID, status); err != nil {
		return false, err
	}
	return true, nil
}

// HandleKey applies a key press on a focused card. Left/right step the ticket
// along the full state order and stop at either end; enter/space ask for the
// detail view. Steps ignore the preset, so on the active-only board a
// waiting_on_merchant card stepped right becomes resolved and leaves the view.
func (b *Board) HandleKey(ctx context.Context, ticketID, pressed string) (KeyResult, error) {
	b.mu.RLock()
	ticket, found := b.find(ticketID)
	b.mu.RUnlock()
	if !found {
		return KeyResult{Action: ActionNone}, ErrUnknownTicket
	}

	result := KeyResult{Action: b.keys.action(pressed), From: ticket.Status.OrDefault()}
	delta := 0
	switch result.Action {
	case ActionOpen:
		result.OpenDetail = ticket.ID
		return result, nil
	case ActionMovePrev:
		delta = -1
	case ActionMoveNext:
		delta = 1
	default:
		return result, nil
	}

	next, ok := domain.StepStatus(result.From, delta)
	if !ok {
		return result, nil
	}
	result.To = next
	if err := b.move(ctx, ticket.ID, next); err != nil {
		return result, err
	}
	result.Moved = true
	return result, nil
}

func (b *Board) move(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.pending--
		b.mu.Unlock()
	}()

	b.mutate.Lock()
	updated, err := b.mover.TransitionStatus(ctx, ticketID, status)
	b.mutate.Unlock()
	if err != nil {
		b.logger.Warn("kanban transition failed",
			zap.String("ticket_id", ticketID),
			zap.String("status", string(status)),
			zap.Error(err))
		return err
	}

	if updated != nil {
		b.mu.Lock()
		for i := range b.tickets {
			if b.tickets[i].ID == updated.ID {
				b.tickets[i] = *updated
			}
		}
		b.mu.Unlock()
	}
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("kanban refresh after transition failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
	return nil
}

// find must be called with mu held.
func (b *Board) find(ticketID string) (domain.EnrichedTicket, bool) {
	for _, t := range b.tickets {
		if t.ID == ticketID {
			return t, true
		}
	}
	return domain.EnrichedTicket{}, false
}

func (b *Board) hasColumn(status domain.TicketStatus) bool {
	for _, s := range b.preset.Columns() {
		if s == status {
			return true
		}
	}
	return false
}
