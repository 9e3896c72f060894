package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"birthchart-server/internal/shared/config"
)

func testConfig(url string) config.GeocoderConfig {
	return config.GeocoderConfig{
		URL:               url,
		UserAgent:         "birthchart-test",
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RetryBackoff:      time.Millisecond,
		RequestsPerSecond: 1000,
	}
}

func TestNominatimGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "birthchart-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		q := r.URL.Query()
		if q.Get("q") != "London" || q.Get("format") != "json" || q.Get("limit") != "1" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"51.5073219","lon":"-0.1276474","display_name":"London, Greater London, England, United Kingdom"}]`))
	}))
	defer server.Close()

	loc, err := NewNominatim(testConfig(server.URL), nil).Geocode(context.Background(), "  London ")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if loc.Latitude != 51.5073219 || loc.Longitude != -0.1276474 {
		t.Fatalf("unexpected coordinates %+v", loc)
	}
	if loc.DisplayName == "" {
		t.Fatalf("expected display name")
	}
}

func TestNominatimNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := NewNominatim(testConfig(server.URL), nil).Geocode(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNominatimEmptyQuery(t *testing.T) {
	_, err := NewNominatim(testConfig("http://127.0.0.1:0"), nil).Geocode(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestNominatimRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522","display_name":"Paris"}]`))
	}))
	defer server.Close()

	loc, err := NewNominatim(testConfig(server.URL), nil).Geocode(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if loc.Latitude != 48.8566 {
		t.Fatalf("unexpected location %+v", loc)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestNominatimGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewNominatim(testConfig(server.URL), nil).Geocode(context.Background(), "Paris")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 1 call + 2 retries, got %d", calls)
	}
}

func TestNominatimDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewNominatim(testConfig(server.URL), nil).Geocode(context.Background(), "Paris")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}
