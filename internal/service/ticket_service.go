package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/observability"
	"github.com/spec-kit/merchant-crm/internal/repository"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

// boardLimit caps the ticket set loaded for a board.
const boardLimit = 500

// TicketService coordinates ticket reads, edits and status transitions.
type TicketService struct {
	tickets    repository.TicketRepository
	enricher   *enrich.Enricher
	cache      cache.ViewCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Enricher   *enrich.Enricher
	Cache      cache.ViewCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Category    string
	MerchantID  string
	AssignedTo  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		enricher:   deps.Enricher,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListTickets returns enriched tickets matching filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.EnrichedTicket, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTickets, cache.Key("list", filter), func() ([]domain.EnrichedTicket, bool, error) {
		rows, err := s.tickets.List(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Tickets(ctx, rows)
		return enriched, complete, nil
	})
}

// ListMerchantTickets returns a merchant's enriched tickets.
func (s *TicketService) ListMerchantTickets(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedTicket, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTickets, cache.Key("merchant", merchantID, order), func() ([]domain.EnrichedTicket, bool, error) {
		rows, err := s.tickets.ListByMerchant(ctx, merchantID, order)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Tickets(ctx, rows)
		return enriched, complete, nil
	})
}

// GetTicket returns one enriched ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.EnrichedTicket, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTickets, cache.Key("get", id), func() (*domain.EnrichedTicket, bool, error) {
		row, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Ticket(ctx, *row)
		return &enriched, complete, nil
	})
}

// SearchTickets runs the store's full-text search and enriches the hits.
func (s *TicketService) SearchTickets(ctx context.Context, term string, filter repository.TicketFilter) ([]domain.EnrichedTicket, error) {
	term = strings.TrimSpace(term)
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTickets, cache.Key("search", term, filter), func() ([]domain.EnrichedTicket, bool, error) {
		rows, err := s.tickets.Search(ctx, term, filter)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Tickets(ctx, rows)
		return enriched, complete, nil
	})
}

// CountTickets counts tickets matching filter.
func (s *TicketService) CountTickets(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTickets, cache.Key("count", filter), func() (int64, bool, error) {
		total, err := s.tickets.Count(ctx, filter)
		return total, err == nil, err
	})
}

// BoardTickets loads the ticket set shown on a board.
func (s *TicketService) BoardTickets(ctx context.Context) ([]domain.EnrichedTicket, error) {
	return s.ListTickets(ctx, repository.TicketFilter{
		Order: repository.Order{Field: "updated_at", Descending: true},
		Limit: boardLimit,
	})
}

// CreateTicket opens a ticket on behalf of the acting profile.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.EnrichedTicket, error) {
	actor := events.ActorFromContext(ctx)
	if actor.ProfileID == nil {
		return nil, apperrors.NewUnauthorized("ticket creator required")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", map[string]any{"field": "subject"})
	}
	if strings.TrimSpace(input.MerchantID) == "" {
		return nil, apperrors.NewValidationError("merchant_id is required", map[string]any{"field": "merchant_id"})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    strings.TrimSpace(input.Category),
		MerchantID:  input.MerchantID,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   *actor.ProfileID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.ScopeTickets)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		EntityID:   ticket.ID,
		MerchantID: ticket.MerchantID,
		Payload: events.TicketCreatedPayload{
			Subject:    ticket.Subject,
			Priority:   ticket.Priority,
			Category:   ticket.Category,
			AssignedTo: ticket.AssignedTo,
		},
	})

	enriched, _ := s.enricher.Ticket(ctx, *ticket)
	return &enriched, nil
}

// UpdateTicket applies a partial edit. Status changes go through TransitionStatus.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (*domain.EnrichedTicket, error) {
	if patch.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if patch.Subject != nil && strings.TrimSpace(*patch.Subject) == "" {
		return nil, apperrors.NewValidationError("subject cannot be empty", map[string]any{"field": "subject"})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}
	patch.UpdatedAt = s.now()

	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.ScopeTickets)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketUpdated,
		EntityID:   updated.ID,
		MerchantID: updated.MerchantID,
		Payload:    events.TicketUpdatedPayload{Fields: patchFields(patch)},
	})

	enriched, _ := s.enricher.Ticket(ctx, *updated)
	return &enriched, nil
}

// TransitionStatus moves a ticket to status in a single update. Entering
// resolved or closed stamps resolved_at; other states leave it as is.
func (s *TicketService) TransitionStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.EnrichedTicket, error) {
	patch, err := domain.NewStatusPatch(status, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.tickets.ApplyStatus(ctx, id, patch)
	s.metrics.RecordTransition(string(status), err == nil)
	if err != nil {
		s.logger.Warn("ticket transition failed",
			zap.String("ticket_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, cache.ScopeTickets)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketStatusChanged,
		EntityID:   updated.ID,
		MerchantID: updated.MerchantID,
		Payload: events.TicketStatusChangedPayload{
			NewStatus:  updated.Status,
			ResolvedAt: patch.ResolvedAt,
		},
	})

	enriched, _ := s.enricher.Ticket(ctx, *updated)
	return &enriched, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, s.now, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	if event.Actor.ProfileID == nil {
		event.Actor = events.ActorFromContext(ctx)
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func patchFields(p domain.TicketPatch) []string {
	var fields []string
	if p.Subject != nil {
		fields = append(fields, "subject")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.AssignedTo != nil || p.ClearAssignee {
		fields = append(fields, "assigned_to")
	}
	sort.Strings(fields)
	return fields
}
