package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/observability"
	"github.com/spec-kit/merchant-crm/internal/repository"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTicketService(repo *fakeTicketRepo, c cache.ViewCache, d events.Dispatcher, m *observability.Metrics) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Enricher:   testEnricher(),
		Cache:      c,
		Dispatcher: d,
		Metrics:    m,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestTransitionStatusPayload(t *testing.T) {
	cases := []struct {
		status       domain.TicketStatus
		wantResolved bool
	}{
		{domain.TicketStatusOpen, false},
		{domain.TicketStatusInProgress, false},
		{domain.TicketStatusWaitingOnMerchant, false},
		{domain.TicketStatusResolved, true},
		{domain.TicketStatusClosed, true},
	}

	for _, tc := range cases {
		var calls int
		var got domain.StatusPatch
		repo := &fakeTicketRepo{
			applyStatusFn: func(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error) {
				calls++
				got = p
				return &domain.Ticket{ID: id, Status: p.Status, MerchantID: "m1", ResolvedAt: p.ResolvedAt}, nil
			},
		}
		svc := newTicketService(repo, nil, nil, nil)

		ticket, err := svc.TransitionStatus(context.Background(), "a", tc.status)
		if err != nil {
			t.Fatalf("%s: %v", tc.status, err)
		}
		if calls != 1 {
			t.Fatalf("%s: expected a single update, got %d", tc.status, calls)
		}
		_, hasResolved := got.Fields()["resolved_at"]
		if hasResolved != tc.wantResolved {
			t.Fatalf("%s: resolved_at present=%v", tc.status, hasResolved)
		}
		if tc.wantResolved && !got.ResolvedAt.Equal(fixedNow) {
			t.Fatalf("%s: resolved_at = %v", tc.status, got.ResolvedAt)
		}
		if !got.UpdatedAt.Equal(fixedNow) {
			t.Fatalf("%s: updated_at = %v", tc.status, got.UpdatedAt)
		}
		if ticket.Merchant == nil || ticket.Merchant.DisplayName != "Acme" {
			t.Fatalf("%s: result not enriched: %+v", tc.status, ticket)
		}
	}
}

func TestTransitionStatusSideEffects(t *testing.T) {
	repo := &fakeTicketRepo{
		applyStatusFn: func(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error) {
			return &domain.Ticket{ID: id, Status: p.Status, MerchantID: "m1"}, nil
		},
	}
	c := newMemoryCache()
	d := &recordingDispatcher{}
	m := observability.NewMetrics()
	svc := newTicketService(repo, c, d, m)

	ctx := events.WithActor(context.Background(), "u1")
	if _, err := svc.TransitionStatus(ctx, "a", domain.TicketStatusInProgress); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if c.invalidated[cache.ScopeTickets] != 1 {
		t.Fatalf("expected ticket scope invalidation, got %v", c.invalidated)
	}
	if len(d.events) != 1 || d.events[0].Type != events.EventTicketStatusChanged {
		t.Fatalf("events = %+v", d.events)
	}
	if d.events[0].Actor.ProfileID == nil || *d.events[0].Actor.ProfileID != "u1" {
		t.Fatalf("actor = %+v", d.events[0].Actor)
	}
	payload := d.events[0].Payload.(events.TicketStatusChangedPayload)
	if payload.NewStatus != domain.TicketStatusInProgress || payload.ResolvedAt != nil {
		t.Fatalf("payload = %+v", payload)
	}
	if m.Snapshot().Transitions["in_progress|ok"] != 1 {
		t.Fatalf("transitions = %v", m.Snapshot().Transitions)
	}
}

func TestTransitionStatusFailure(t *testing.T) {
	repo := &fakeTicketRepo{
		applyStatusFn: func(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error) {
			return nil, errors.New("store down")
		},
	}
	c := newMemoryCache()
	d := &recordingDispatcher{}
	m := observability.NewMetrics()
	svc := newTicketService(repo, c, d, m)

	if _, err := svc.TransitionStatus(context.Background(), "a", domain.TicketStatusClosed); err == nil {
		t.Fatal("expected error")
	}
	if len(c.invalidated) != 0 || len(d.events) != 0 {
		t.Fatalf("failed transition should have no side effects: %v %v", c.invalidated, d.events)
	}
	if m.Snapshot().Transitions["closed|failed"] != 1 {
		t.Fatalf("transitions = %v", m.Snapshot().Transitions)
	}
}

func TestTransitionStatusRejectsUnknown(t *testing.T) {
	svc := newTicketService(&fakeTicketRepo{}, nil, nil, nil)
	_, err := svc.TransitionStatus(context.Background(), "a", "archived")
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestListTicketsReadsThroughCache(t *testing.T) {
	assignee := "u1"
	repo := &fakeTicketRepo{
		listFn: func(ctx context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
			return []domain.Ticket{{ID: "a", MerchantID: "m1", AssignedTo: &assignee}}, nil
		},
		applyStatusFn: func(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error) {
			return &domain.Ticket{ID: id, Status: p.Status, MerchantID: "m1"}, nil
		},
	}
	svc := newTicketService(repo, newMemoryCache(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rows, err := svc.BoardTickets(ctx)
		if err != nil {
			t.Fatalf("BoardTickets: %v", err)
		}
		if len(rows) != 1 || rows[0].AssignedUser == nil || rows[0].AssignedUser.DisplayName != "Dana" {
			t.Fatalf("rows = %+v", rows)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected cached second read, got %d store calls", repo.listCalls)
	}

	if _, err := svc.TransitionStatus(ctx, "a", domain.TicketStatusResolved); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if _, err := svc.BoardTickets(ctx); err != nil {
		t.Fatalf("BoardTickets: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected re-fetch after invalidation, got %d store calls", repo.listCalls)
	}
}

func TestCreateTicket(t *testing.T) {
	var stored *domain.Ticket
	repo := &fakeTicketRepo{
		createFn: func(ctx context.Context, tk *domain.Ticket) error {
			tk.ID = "t1"
			stored = tk
			return nil
		},
	}
	d := &recordingDispatcher{}
	svc := newTicketService(repo, newMemoryCache(), d, nil)

	if _, err := svc.CreateTicket(context.Background(), TicketCreateInput{Subject: "x", MerchantID: "m1"}); err == nil {
		t.Fatal("expected error without an acting profile")
	}

	ctx := events.WithActor(context.Background(), "u1")
	_, err := svc.CreateTicket(ctx, TicketCreateInput{Subject: "  ", MerchantID: "m1"})
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("blank subject: %v", err)
	}

	got, err := svc.CreateTicket(ctx, TicketCreateInput{Subject: " Refund ", MerchantID: "m1"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if stored.Status != domain.TicketStatusOpen || stored.Priority != domain.TicketPriorityMedium || stored.CreatedBy != "u1" {
		t.Fatalf("stored = %+v", stored)
	}
	if got.Subject != "Refund" || got.Merchant == nil {
		t.Fatalf("result = %+v", got)
	}
	if len(d.events) != 1 || d.events[0].Type != events.EventTicketCreated || d.events[0].EntityID != "t1" {
		t.Fatalf("events = %+v", d.events)
	}
}

func TestUpdateTicket(t *testing.T) {
	var got domain.TicketPatch
	repo := &fakeTicketRepo{
		updateFn: func(ctx context.Context, id string, p domain.TicketPatch) (*domain.Ticket, error) {
			got = p
			return &domain.Ticket{ID: id, MerchantID: "m1", Priority: *p.Priority}, nil
		},
	}
	d := &recordingDispatcher{}
	svc := newTicketService(repo, nil, d, nil)

	if _, err := svc.UpdateTicket(context.Background(), "a", domain.TicketPatch{}); err == nil {
		t.Fatal("empty patch should be rejected")
	}
	bad := domain.TicketPriority("whenever")
	if _, err := svc.UpdateTicket(context.Background(), "a", domain.TicketPatch{Priority: &bad}); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("bad priority: %v", err)
	}

	high := domain.TicketPriorityHigh
	if _, err := svc.UpdateTicket(context.Background(), "a", domain.TicketPatch{Priority: &high, ClearAssignee: true}); err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if !got.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("updated_at = %v", got.UpdatedAt)
	}
	fields := d.events[0].Payload.(events.TicketUpdatedPayload).Fields
	if len(fields) != 2 || fields[0] != "assigned_to" || fields[1] != "priority" {
		t.Fatalf("fields = %v", fields)
	}
}

// flakyProfiles fails the first failures lookups, then serves rows.
type flakyProfiles struct {
	rows     stubProfiles
	failures int
	calls    int
}

func (f *flakyProfiles) FetchByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("profiles unavailable")
	}
	return f.rows.FetchByIDs(ctx, ids)
}

func TestDegradedEnrichmentIsNotCached(t *testing.T) {
	assignee := "u1"
	repo := &fakeTicketRepo{
		listFn: func(ctx context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
			return []domain.Ticket{{ID: "a", MerchantID: "m1", AssignedTo: &assignee}}, nil
		},
	}
	profiles := &flakyProfiles{rows: stubProfiles{"u1": {ID: "u1", DisplayName: "Dana"}}, failures: 1}
	viewCache := newMemoryCache()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Enricher:   enrich.NewEnricher(profiles, stubMerchants{"m1": {ID: "m1", DisplayName: "Acme"}}, nil),
		Cache:      viewCache,
	})
	ctx := context.Background()

	first, err := svc.ListTickets(ctx, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("first ListTickets: %v", err)
	}
	if first[0].AssignedUser != nil {
		t.Fatalf("failed lookup should degrade to nil, got %+v", first[0].AssignedUser)
	}
	if first[0].Merchant == nil {
		t.Fatal("merchant lookup should be unaffected")
	}

	second, err := svc.ListTickets(ctx, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("second ListTickets: %v", err)
	}
	if second[0].AssignedUser == nil || second[0].AssignedUser.DisplayName != "Dana" {
		t.Fatalf("second read served a degraded view: %+v", second[0].AssignedUser)
	}
	if repo.listCalls != 2 || profiles.calls != 2 {
		t.Fatalf("expected a fresh load after degradation, got store=%d profiles=%d", repo.listCalls, profiles.calls)
	}

	if _, err := svc.ListTickets(ctx, repository.TicketFilter{}); err != nil {
		t.Fatalf("third ListTickets: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("complete view should be cached, got %d store calls", repo.listCalls)
	}
}
