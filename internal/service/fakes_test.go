package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/repository"
)

type fakeTicketRepo struct {
	createFn      func(ctx context.Context, t *domain.Ticket) error
	updateFn      func(ctx context.Context, id string, p domain.TicketPatch) (*domain.Ticket, error)
	applyStatusFn func(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error)
	getFn         func(ctx context.Context, id string) (*domain.Ticket, error)
	listFn        func(ctx context.Context, f repository.TicketFilter) ([]domain.Ticket, error)
	listCalls     int
}

func (f *fakeTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	t.ID = "new"
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, id string, p domain.TicketPatch) (*domain.Ticket, error) {
	return f.updateFn(ctx, id, p)
}

func (f *fakeTicketRepo) ApplyStatus(ctx context.Context, id string, p domain.StatusPatch) (*domain.Ticket, error) {
	return f.applyStatusFn(ctx, id, p)
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListByMerchant(ctx context.Context, merchantID string, order repository.Order) ([]domain.Ticket, error) {
	return f.List(ctx, repository.TicketFilter{MerchantID: &merchantID, Order: order})
}

func (f *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []domain.Ticket{}, nil
}

func (f *fakeTicketRepo) Search(ctx context.Context, term string, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return f.List(ctx, filter)
}

func (f *fakeTicketRepo) Count(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	rows, err := f.List(ctx, filter)
	return int64(len(rows)), err
}

type stubProfiles map[string]domain.Profile

func (s stubProfiles) FetchByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubMerchants map[string]domain.Merchant

func (s stubMerchants) FetchByIDs(ctx context.Context, ids []string) ([]domain.Merchant, error) {
	var out []domain.Merchant
	for _, id := range ids {
		if m, ok := s[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func testEnricher() *enrich.Enricher {
	return enrich.NewEnricher(
		stubProfiles{"u1": {ID: "u1", DisplayName: "Dana"}},
		stubMerchants{"m1": {ID: "m1", DisplayName: "Acme"}},
		nil,
	)
}

// memoryCache is a map-backed ViewCache that stores values without encoding.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]any
	invalidated map[string]int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]any{}, invalidated: map[string]int{}}
}

func (m *memoryCache) Get(ctx context.Context, scope, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[scope+"/"+key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.EnrichedTicket:
		*d = v.([]domain.EnrichedTicket)
	case *[]domain.Contact:
		*d = v.([]domain.Contact)
	default:
		return false, errors.New("unsupported cache type")
	}
	return true, nil
}

func (m *memoryCache) Set(ctx context.Context, scope, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[scope+"/"+key] = value
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated[scope]++
	for k := range m.entries {
		if strings.HasPrefix(k, scope+"/") {
			delete(m.entries, k)
		}
	}
	return nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (r *recordingDispatcher) Publish(ctx context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) SubscribeAll(events.EventHandler) {}

// memoryContacts is an in-memory ContactRepository. It records the order of
// write calls so tests can check demote-then-write sequencing. LockMerchant
// inside WithinTx holds a per-merchant lock until the transaction returns.
type memoryContacts struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	rows      map[string]*domain.Contact
	calls     []string
	demoteErr error
	nextID    int
}

func newMemoryContacts(rows ...domain.Contact) *memoryContacts {
	m := &memoryContacts{rows: map[string]*domain.Contact{}, locks: map[string]*sync.Mutex{}}
	for i := range rows {
		c := rows[i]
		m.rows[c.ID] = &c
	}
	return m
}

func (m *memoryContacts) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memoryContacts) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Contact{}
	for _, c := range m.rows {
		if c.MerchantID == merchantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryContacts) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memoryContacts) Create(ctx context.Context, contact *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	m.nextID++
	contact.ID = fmt.Sprintf("new%d", m.nextID)
	cp := *contact
	m.rows[contact.ID] = &cp
	return nil
}

func (m *memoryContacts) Update(ctx context.Context, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update")
	c, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.IsPrimary != nil {
		c.IsPrimary = *patch.IsPrimary
	}
	cp := *c
	return &cp, nil
}

func (m *memoryContacts) DemoteOthers(ctx context.Context, merchantID, exceptID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("demote_others")
	if m.demoteErr != nil {
		return 0, m.demoteErr
	}
	var n int64
	for _, c := range m.rows {
		if c.MerchantID == merchantID && c.ID != exceptID && c.IsPrimary {
			c.IsPrimary = false
			n++
		}
	}
	return n, nil
}

func (m *memoryContacts) DemoteAll(ctx context.Context, merchantID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("demote_all")
	if m.demoteErr != nil {
		return 0, m.demoteErr
	}
	var n int64
	for _, c := range m.rows {
		if c.MerchantID == merchantID && c.IsPrimary {
			c.IsPrimary = false
			n++
		}
	}
	return n, nil
}

func (m *memoryContacts) LockMerchant(ctx context.Context, merchantID string) error {
	return errors.New("LockMerchant outside a transaction")
}

func (m *memoryContacts) WithinTx(ctx context.Context, fn func(repository.ContactRepository) error) error {
	m.mu.Lock()
	m.record("begin")
	m.mu.Unlock()

	tx := &memoryContactsTx{memoryContacts: m}
	defer tx.release()
	return fn(tx)
}

func (m *memoryContacts) merchantLock(merchantID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[merchantID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[merchantID] = l
	}
	return l
}

func (m *memoryContacts) primaries(merchantID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, c := range m.rows {
		if c.MerchantID == merchantID && c.IsPrimary {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

type memoryContactsTx struct {
	*memoryContacts
	held []*sync.Mutex
}

func (tx *memoryContactsTx) LockMerchant(ctx context.Context, merchantID string) error {
	l := tx.merchantLock(merchantID)
	l.Lock()
	tx.held = append(tx.held, l)
	return nil
}

func (tx *memoryContactsTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
}
