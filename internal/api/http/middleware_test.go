package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/observability"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

func TestErrorEnvelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, "crm-test", zap.NewNop(), metrics, time.Second)
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("bad input", map[string]any{"field": "status"})
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendStatus(http.StatusNoContent)
	})

	cases := []struct {
		target string
		status int
		code   string
	}{
		{"/invalid", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/missing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", tt.target, err)
		}
		var body struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.target, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status || body.Error.Code != tt.code {
			t.Fatalf("%s: got (%d, %s), want (%d, %s)", tt.target, resp.StatusCode, body.Error.Code, tt.status, tt.code)
		}
		if tt.target == "/invalid" && body.Error.Details["field"] != "status" {
			t.Fatalf("details = %v", body.Error.Details)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("request context carries no deadline: %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}

	if len(metrics.Snapshot().Errors) != 3 {
		t.Fatalf("errors recorded = %v", metrics.Snapshot().Errors)
	}
}
