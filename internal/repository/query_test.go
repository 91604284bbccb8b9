package repository

import (
	"testing"
	"time"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

func TestTicketWhere(t *testing.T) {
	merchant := "m1"
	category := "billing"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := ticketWhere(TicketFilter{
		MerchantID:  &merchant,
		Category:    &category,
		Statuses:    []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusResolved},
		CreatedFrom: &from,
	})

	want := "merchant_id=$1 AND category=$2 AND status IN ($3,$4) AND created_at >= $5"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if len(args) != 5 || args[2] != "open" || args[3] != "resolved" {
		t.Fatalf("args = %v", args)
	}
}

func TestTicketWhereEmpty(t *testing.T) {
	where, args := ticketWhere(TicketFilter{})
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("ticketWhere(empty) = (%q, %v)", where, args)
	}
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		order Order
		want  string
	}{
		{Order{}, "updated_at DESC"},
		{Order{Field: "created_at"}, "created_at ASC"},
		{Order{Field: "priority", Descending: true}, "priority DESC"},
		{Order{Field: "id; DROP TABLE tickets"}, "updated_at DESC"},
	}
	for _, tt := range cases {
		if got := tt.order.clause(ticketOrderFields, "updated_at"); got != tt.want {
			t.Fatalf("clause(%+v) = %q, want %q", tt.order, got, tt.want)
		}
	}
}

func TestPage(t *testing.T) {
	cases := []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, defaultPageSize, 0},
		{10, -5, 10, 0},
		{10000, 40, maxPageSize, 40},
	}
	for _, tt := range cases {
		l, o := page(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Fatalf("page(%d, %d) = (%d, %d)", tt.limit, tt.offset, l, o)
		}
	}
}
