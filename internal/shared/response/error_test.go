package response

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"birthchart-server/internal/shared/errors"
)

func TestError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		err     error
		status  int
		errType string
		message string
	}{
		{"not found", errors.NotFoundf("city %q not found", "Atlantis"), http.StatusNotFound, "not_found", `city "Atlantis" not found`},
		{"validation", errors.Validation("month must be 1-12"), http.StatusBadRequest, "validation", "month must be 1-12"},
		{"unauthorized", errors.Unauthorized("invalid credentials"), http.StatusUnauthorized, "unauthorized", "invalid credentials"},
		{"conflict", errors.Conflictf("username %s taken", "ada"), http.StatusConflict, "conflict", "username ada taken"},
		{"unavailable", errors.Unavailable("accounts are disabled"), http.StatusServiceUnavailable, "unavailable", "accounts are disabled"},
		{"rate limited", errors.RateLimited("slow down"), http.StatusTooManyRequests, "rate_limited", "slow down"},
		{"external", errors.WrapExternal("geocoder unavailable", fmt.Errorf("dial tcp: refused")), http.StatusServiceUnavailable, "external", "geocoder unavailable"},
		{"internal hides cause", errors.WrapInternal("query charts", fmt.Errorf("pq: relation missing")), http.StatusInternalServerError, "internal", "internal server error"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/birth_chart", nil)
			rec := httptest.NewRecorder()

			Error(rec, req, logger, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.errType || body.Message != tt.message || body.Code != tt.status {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestErrorWithMessage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()

	ErrorWithMessage(rec, req, logger, errors.WrapUnauthorized("bad password", fmt.Errorf("bcrypt mismatch")), "invalid credentials")

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || body.Message != "invalid credentials" {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}

func TestSuccessNilData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("got %d with %d body bytes", rec.Code, rec.Body.Len())
	}
}
