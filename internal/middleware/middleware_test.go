package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/shared/config"
	"birthchart-server/internal/shared/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func withSecret(t *testing.T) {
	t.Helper()
	prev := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenExpiration: time.Hour},
	}
	t.Cleanup(func() { config.GlobalConfig = prev })
}

func TestJWTMiddleware(t *testing.T) {
	withSecret(t)

	var seen *auth.Claims
	h := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r)
	}))

	token, err := auth.GenerateJWT(9, "luna", "luna@example.com")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		cookie string
		header string
		want   int
	}{
		{"no cookie", "", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", "", http.StatusUnauthorized},
		{"valid token", token, "", http.StatusOK},
		{"bearer header", "", "Bearer " + token, http.StatusOK},
		{"basic header", "", "Basic " + token, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.UserID != 9) {
				t.Errorf("claims not propagated: %+v", seen)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2})
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/birth_chart", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/birth_chart", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstSize: 1})
	rl.getLimiter("10.0.0.1").Allow()

	rl.cleanup(time.Now().Add(time.Minute))
	if len(rl.clients) != 0 {
		t.Errorf("idle client not removed, %d remaining", len(rl.clients))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.168.1.1:1234", "", "", false, "192.168.1.1"},
		{"ignores xff without trust", "192.168.1.1:1234", "1.2.3.4", "", false, "192.168.1.1"},
		{"first xff entry", "192.168.1.1:1234", "1.2.3.4, 5.6.7.8", "", true, "1.2.3.4"},
		{"real ip", "192.168.1.1:1234", "", "9.9.9.9", true, "9.9.9.9"},
		{"no port", "192.168.1.1", "", "", false, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/charts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequestLogger(recorder)(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/17", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/charts/18", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("request id = %q, want propagated abc", got)
	}

	if n, err := testutil.GatherAndCount(reg, "birthchart_http_requests_total"); err != nil || n != 1 {
		t.Errorf("series = %d, want a single pattern-labelled series", n)
	}
}
