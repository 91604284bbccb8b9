package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

type fakeProfiles struct {
	calls  int
	lastID []string
	rows   map[string]domain.Profile
	err    error
}

func (f *fakeProfiles) FetchByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	f.calls++
	f.lastID = ids
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Profile{}
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMerchants struct {
	calls int
	rows  map[string]domain.Merchant
	err   error
}

func (f *fakeMerchants) FetchByIDs(ctx context.Context, ids []string) ([]domain.Merchant, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Merchant{}
	for _, id := range ids {
		if m, ok := f.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func newFixtures() (*fakeProfiles, *fakeMerchants) {
	profiles := &fakeProfiles{rows: map[string]domain.Profile{
		"u1": {ID: "u1", DisplayName: "Dana"},
		"u2": {ID: "u2", DisplayName: "Lee"},
		"u3": {ID: "u3", DisplayName: "Sam"},
	}}
	merchants := &fakeMerchants{rows: map[string]domain.Merchant{
		"m1": {ID: "m1", DisplayName: "Acme"},
		"m2": {ID: "m2", DisplayName: "Globex"},
	}}
	return profiles, merchants
}

func TestTicketsEmptyIssuesNoLookups(t *testing.T) {
	profiles, merchants := newFixtures()
	e := NewEnricher(profiles, merchants, nil)

	got, complete := e.Tickets(context.Background(), nil)
	if len(got) != 0 || !complete {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if profiles.calls != 0 || merchants.calls != 0 {
		t.Fatalf("expected no lookups, got profiles=%d merchants=%d", profiles.calls, merchants.calls)
	}
}

func TestTicketsOneLookupPerRelation(t *testing.T) {
	profiles, merchants := newFixtures()
	e := NewEnricher(profiles, merchants, nil)

	assignees := []string{"u1", "u2", "u3"}
	rows := make([]domain.Ticket, 10000)
	for i := range rows {
		rows[i] = domain.Ticket{
			ID:         fmt.Sprintf("t%d", i),
			MerchantID: "m1",
			AssignedTo: strPtr(assignees[i%3]),
		}
	}

	got, complete := e.Tickets(context.Background(), rows)
	if !complete {
		t.Fatal("expected complete enrichment")
	}
	if profiles.calls != 1 || merchants.calls != 1 {
		t.Fatalf("expected one lookup per relation, got profiles=%d merchants=%d", profiles.calls, merchants.calls)
	}
	if len(profiles.lastID) != 3 {
		t.Fatalf("expected 3 distinct assignee ids, got %v", profiles.lastID)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range got {
		if got[i].ID != rows[i].ID {
			t.Fatalf("row %d out of order: %s", i, got[i].ID)
		}
		if got[i].AssignedUser == nil || got[i].AssignedUser.ID != *rows[i].AssignedTo {
			t.Fatalf("row %d assignee mismatch", i)
		}
	}
}

func TestTicketsNullAndMissingRelations(t *testing.T) {
	profiles, merchants := newFixtures()
	e := NewEnricher(profiles, merchants, nil)

	rows := []domain.Ticket{
		{ID: "a", MerchantID: "m1", AssignedTo: nil},
		{ID: "b", MerchantID: "gone", AssignedTo: strPtr("ghost")},
		{ID: "c", MerchantID: "m2", AssignedTo: strPtr("u2")},
	}
	got, complete := e.Tickets(context.Background(), rows)
	if !complete {
		t.Fatal("missing rows are not a lookup failure")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].AssignedUser != nil || got[0].Merchant == nil || got[0].Merchant.DisplayName != "Acme" {
		t.Fatalf("row a: %+v", got[0])
	}
	if got[1].AssignedUser != nil || got[1].Merchant != nil {
		t.Fatalf("row b should have nil relations: %+v", got[1])
	}
	if got[2].AssignedUser == nil || got[2].AssignedUser.DisplayName != "Lee" {
		t.Fatalf("row c: %+v", got[2])
	}
}

func TestTicketsNoAssigneesSkipsProfileLookup(t *testing.T) {
	profiles, merchants := newFixtures()
	e := NewEnricher(profiles, merchants, nil)

	e.Tickets(context.Background(), []domain.Ticket{{ID: "a", MerchantID: "m1"}})
	if profiles.calls != 0 {
		t.Fatalf("expected no profile lookup, got %d", profiles.calls)
	}
	if merchants.calls != 1 {
		t.Fatalf("expected one merchant lookup, got %d", merchants.calls)
	}
}

func TestTicketsLookupFailureDegradesToNil(t *testing.T) {
	profiles, merchants := newFixtures()
	profiles.err = errors.New("profiles unavailable")
	e := NewEnricher(profiles, merchants, nil)

	got, complete := e.Tickets(context.Background(), []domain.Ticket{{ID: "a", MerchantID: "m1", AssignedTo: strPtr("u1")}})
	if complete {
		t.Fatal("failed lookup must report an incomplete enrichment")
	}
	if len(got) != 1 {
		t.Fatalf("expected row to survive failed lookup")
	}
	if got[0].AssignedUser != nil {
		t.Fatal("failed lookup should yield nil assignee")
	}
	if got[0].Merchant == nil {
		t.Fatal("merchant lookup should be unaffected")
	}
}

func TestTasksAndActivities(t *testing.T) {
	profiles, merchants := newFixtures()
	e := NewEnricher(profiles, merchants, nil)

	tasks, _ := e.Tasks(context.Background(), []domain.Task{
		{ID: "k1", MerchantID: "m2", AssignedTo: strPtr("u3")},
		{ID: "k2", MerchantID: "m2"},
	})
	if tasks[0].AssignedUser == nil || tasks[0].AssignedUser.ID != "u3" || tasks[1].AssignedUser != nil {
		t.Fatalf("tasks: %+v", tasks)
	}
	if tasks[1].Merchant == nil || tasks[1].Merchant.ID != "m2" {
		t.Fatalf("task merchant: %+v", tasks[1])
	}

	activities, _ := e.Activities(context.Background(), []domain.Activity{
		{ID: "x1", MerchantID: "m1", CreatedBy: strPtr("u1")},
	})
	if activities[0].Author == nil || activities[0].Author.DisplayName != "Dana" {
		t.Fatalf("activities: %+v", activities)
	}
	if profiles.calls != 2 || merchants.calls != 2 {
		t.Fatalf("expected one lookup per relation per pass, got profiles=%d merchants=%d", profiles.calls, merchants.calls)
	}
}

func TestDistinctKeysPreservesFirstSeenOrder(t *testing.T) {
	rows := []*string{strPtr("b"), nil, strPtr("a"), strPtr("b"), strPtr("")}
	got := DistinctKeys(rows, func(s *string) *string { return s })
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("DistinctKeys = %v", got)
	}
}
