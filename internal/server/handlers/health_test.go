package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (f fakePinger) HealthCheck(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus string
		wantDB     string
		wantRedis  string
	}{
		{"all disabled", nil, nil, "healthy", "disabled", "disabled"},
		{"all up", fakePinger{}, fakePinger{}, "healthy", "connected", "connected"},
		{"db down", fakePinger{err: fmt.Errorf("refused")}, nil, "degraded", "disconnected", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("analytic", tt.db, tt.redis)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/server/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status code = %d", rec.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantStatus || resp.Database != tt.wantDB || resp.Redis != tt.wantRedis {
				t.Errorf("got %+v", resp)
			}
			if resp.Ephemeris != "analytic" {
				t.Errorf("ephemeris = %q", resp.Ephemeris)
			}
		})
	}
}
