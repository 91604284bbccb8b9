package enrich

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// ProfileFetcher loads profiles by id set.
type ProfileFetcher interface {
	FetchByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
}

// MerchantFetcher loads merchants by id set.
type MerchantFetcher interface {
	FetchByIDs(ctx context.Context, ids []string) ([]domain.Merchant, error)
}

// Enricher attaches assignee/author profiles and merchants to primary rows.
type Enricher struct {
	profiles  ProfileFetcher
	merchants MerchantFetcher
	logger    *zap.Logger
}

// NewEnricher builds an Enricher.
func NewEnricher(profiles ProfileFetcher, merchants MerchantFetcher, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{profiles: profiles, merchants: merchants, logger: logger}
}

func profileID(p domain.Profile) string   { return p.ID }
func merchantID(m domain.Merchant) string { return m.ID }

// Tickets resolves assignee and merchant for each ticket, preserving order.
// The boolean is false when a lookup failed and some relations degraded to
// nil; such a result must not outlive the read that produced it.
func (e *Enricher) Tickets(ctx context.Context, rows []domain.Ticket) ([]domain.EnrichedTicket, bool) {
	out := make([]domain.EnrichedTicket, 0, len(rows))
	if len(rows) == 0 {
		return out, true
	}
	ctx, span := tracer.Start(ctx, "enrich.tickets")
	defer span.End()
	span.SetAttributes(attribute.Int("enrich.rows", len(rows)))

	users, usersOK := Resolve(ctx, rows, Relation[domain.Ticket, domain.Profile]{
		Name:  "assigned_user",
		Key:   func(t domain.Ticket) *string { return t.AssignedTo },
		Fetch: e.profiles.FetchByIDs,
		ID:    profileID,
	}, e.logger)
	merchants, merchantsOK := Resolve(ctx, rows, Relation[domain.Ticket, domain.Merchant]{
		Name:  "merchant",
		Key:   func(t domain.Ticket) *string { return &t.MerchantID },
		Fetch: e.merchants.FetchByIDs,
		ID:    merchantID,
	}, e.logger)

	for _, t := range rows {
		out = append(out, domain.EnrichedTicket{
			Ticket:       t,
			AssignedUser: lookup(users, t.AssignedTo),
			Merchant:     lookup(merchants, &t.MerchantID),
		})
	}
	return out, usersOK && merchantsOK
}

// Ticket enriches a single ticket.
func (e *Enricher) Ticket(ctx context.Context, row domain.Ticket) (domain.EnrichedTicket, bool) {
	out, complete := e.Tickets(ctx, []domain.Ticket{row})
	return out[0], complete
}

// Tasks resolves assignee and merchant for each task, preserving order.
func (e *Enricher) Tasks(ctx context.Context, rows []domain.Task) ([]domain.EnrichedTask, bool) {
	out := make([]domain.EnrichedTask, 0, len(rows))
	if len(rows) == 0 {
		return out, true
	}
	ctx, span := tracer.Start(ctx, "enrich.tasks")
	defer span.End()
	span.SetAttributes(attribute.Int("enrich.rows", len(rows)))

	users, usersOK := Resolve(ctx, rows, Relation[domain.Task, domain.Profile]{
		Name:  "assigned_user",
		Key:   func(t domain.Task) *string { return t.AssignedTo },
		Fetch: e.profiles.FetchByIDs,
		ID:    profileID,
	}, e.logger)
	merchants, merchantsOK := Resolve(ctx, rows, Relation[domain.Task, domain.Merchant]{
		Name:  "merchant",
		Key:   func(t domain.Task) *string { return &t.MerchantID },
		Fetch: e.merchants.FetchByIDs,
		ID:    merchantID,
	}, e.logger)

	for _, t := range rows {
		out = append(out, domain.EnrichedTask{
			Task:         t,
			AssignedUser: lookup(users, t.AssignedTo),
			Merchant:     lookup(merchants, &t.MerchantID),
		})
	}
	return out, usersOK && merchantsOK
}

// Activities resolves author and merchant for each activity, preserving order.
func (e *Enricher) Activities(ctx context.Context, rows []domain.Activity) ([]domain.EnrichedActivity, bool) {
	out := make([]domain.EnrichedActivity, 0, len(rows))
	if len(rows) == 0 {
		return out, true
	}
	ctx, span := tracer.Start(ctx, "enrich.activities")
	defer span.End()
	span.SetAttributes(attribute.Int("enrich.rows", len(rows)))

	authors, authorsOK := Resolve(ctx, rows, Relation[domain.Activity, domain.Profile]{
		Name:  "author",
		Key:   func(a domain.Activity) *string { return a.CreatedBy },
		Fetch: e.profiles.FetchByIDs,
		ID:    profileID,
	}, e.logger)
	merchants, merchantsOK := Resolve(ctx, rows, Relation[domain.Activity, domain.Merchant]{
		Name:  "merchant",
		Key:   func(a domain.Activity) *string { return &a.MerchantID },
		Fetch: e.merchants.FetchByIDs,
		ID:    merchantID,
	}, e.logger)

	for _, a := range rows {
		out = append(out, domain.EnrichedActivity{
			Activity: a,
			Author:   lookup(authors, a.CreatedBy),
			Merchant: lookup(merchants, &a.MerchantID),
		})
	}
	return out, authorsOK && merchantsOK
}
