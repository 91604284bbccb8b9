package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no rows", fmt.Errorf("get ticket: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"bad status", domain.ErrInvalidStatus, "VALIDATION_FAILED", http.StatusBadRequest},
		{"bad priority", domain.ErrInvalidPriority, "VALIDATION_FAILED", http.StatusBadRequest},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"generic", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range cases {
		got := ToDomainError(tt.err)
		if got.Code != tt.code || got.HTTPStatus != tt.status {
			t.Fatalf("%s: got (%s, %d), want (%s, %d)", tt.name, got.Code, got.HTTPStatus, tt.code, tt.status)
		}
	}
}

func TestMapErrorNil(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatal("MapError(nil) must stay nil")
	}
	if ToDomainError(nil) != nil {
		t.Fatal("ToDomainError(nil) must stay nil")
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("internal error should unwrap to cause")
	}
}
