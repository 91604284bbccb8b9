package domain

import (
	"testing"
	"time"
)

func TestStepStatus(t *testing.T) {
	cases := []struct {
		from  TicketStatus
		delta int
		want  TicketStatus
		moved bool
	}{
		{TicketStatusOpen, 1, TicketStatusInProgress, true},
		{TicketStatusOpen, -1, TicketStatusOpen, false},
		{TicketStatusInProgress, -1, TicketStatusOpen, true},
		{TicketStatusWaitingOnMerchant, 1, TicketStatusResolved, true},
		{TicketStatusResolved, 1, TicketStatusClosed, true},
		{TicketStatusClosed, 1, TicketStatusClosed, false},
		{TicketStatusClosed, -1, TicketStatusResolved, true},
		{TicketStatus(""), 1, TicketStatusInProgress, true},
		{TicketStatus("bogus"), -1, TicketStatus("bogus"), false},
		{TicketStatusOpen, 0, TicketStatusOpen, false},
	}

	for _, tt := range cases {
		got, moved := StepStatus(tt.from, tt.delta)
		if got != tt.want || moved != tt.moved {
			t.Fatalf("StepStatus(%q, %d)=(%q, %v), want (%q, %v)", tt.from, tt.delta, got, moved, tt.want, tt.moved)
		}
	}
}

func TestNewStatusPatchStampsResolution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, status := range StatusOrder {
		patch, err := NewStatusPatch(status, now)
		if err != nil {
			t.Fatalf("NewStatusPatch(%q): %v", status, err)
		}
		fields := patch.Fields()
		_, hasResolved := fields["resolved_at"]
		if status.IsResolution() {
			if patch.ResolvedAt == nil || !patch.ResolvedAt.Equal(now) || !hasResolved {
				t.Fatalf("status %q: expected resolved_at stamped, got %v", status, fields)
			}
		} else if patch.ResolvedAt != nil || hasResolved {
			t.Fatalf("status %q: resolved_at must be absent, got %v", status, fields)
		}
		if fields["status"] != string(status) {
			t.Fatalf("status field = %v, want %q", fields["status"], status)
		}
		if !patch.UpdatedAt.Equal(now) {
			t.Fatalf("updated_at not stamped for %q", status)
		}
	}
}

func TestNewStatusPatchRejectsUnknown(t *testing.T) {
	if _, err := NewStatusPatch(TicketStatus("archived"), time.Now()); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestParseTicketStatus(t *testing.T) {
	got, err := ParseTicketStatus(" Waiting_On_Merchant ")
	if err != nil || got != TicketStatusWaitingOnMerchant {
		t.Fatalf("ParseTicketStatus=(%q, %v)", got, err)
	}
	if _, err := ParseTicketStatus("pending"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOrDefault(t *testing.T) {
	if TicketStatus("").OrDefault() != TicketStatusOpen {
		t.Fatal("empty status should default to open")
	}
	if TicketStatus("nope").OrDefault() != TicketStatusOpen {
		t.Fatal("unknown status should default to open")
	}
	if TicketStatusClosed.OrDefault() != TicketStatusClosed {
		t.Fatal("known status must be preserved")
	}
}
