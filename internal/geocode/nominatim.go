package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"birthchart-server/internal/shared/config"
	"birthchart-server/internal/shared/metrics"

	"golang.org/x/time/rate"
)

// Nominatim queries an OpenStreetMap Nominatim search endpoint. Requests
// share one process-wide limiter so the public instance's usage policy
// holds across concurrent handlers.
type Nominatim struct {
	baseURL      string
	userAgent    string
	maxRetries   int
	retryBackoff time.Duration
	httpClient   *http.Client
	limiter      *rate.Limiter
	metrics      *metrics.Recorder
	logger       *slog.Logger
}

func NewNominatim(cfg config.GeocoderConfig, recorder *metrics.Recorder) *Nominatim {
	return &Nominatim{
		baseURL:      cfg.URL,
		userAgent:    cfg.UserAgent,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		metrics: recorder,
		logger:  slog.With("component", "geocode", "provider", "nominatim"),
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// retryableError marks failures worth another attempt: transport errors
// and 5xx/429 responses.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (n *Nominatim) Geocode(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, ErrEmptyQuery
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := n.retryBackoff * time.Duration(1<<(attempt-1))
			n.logger.Debug("Retrying geocode request",
				"operation", "geocode",
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return Location{}, fmt.Errorf("%w: %v", ErrUpstream, ctx.Err())
			case <-time.After(backoff):
			}
		}

		loc, err := n.lookup(ctx, query)
		if err == nil {
			return loc, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return Location{}, err
		}
		lastErr = err
	}

	return Location{}, fmt.Errorf("%w: %v", ErrUpstream, lastErr)
}

func (n *Nominatim) lookup(ctx context.Context, query string) (Location, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.metrics.GeocodeRequest("transport_error", time.Since(start))
		return Location{}, &retryableError{fmt.Errorf("geocode: request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		n.metrics.GeocodeRequest("transport_error", time.Since(start))
		return Location{}, &retryableError{fmt.Errorf("geocode: read body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		n.metrics.GeocodeRequest("upstream_error", time.Since(start))
		return Location{}, &retryableError{fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		n.metrics.GeocodeRequest("upstream_error", time.Since(start))
		return Location{}, fmt.Errorf("%w: unexpected status %d: %s", ErrUpstream, resp.StatusCode, truncate(body, 200))
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		n.metrics.GeocodeRequest("decode_error", time.Since(start))
		return Location{}, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	if len(places) == 0 {
		n.metrics.GeocodeRequest("not_found", time.Since(start))
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	loc, err := places[0].location()
	if err != nil {
		n.metrics.GeocodeRequest("decode_error", time.Since(start))
		return Location{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	n.metrics.GeocodeRequest("ok", time.Since(start))
	n.logger.Debug("Geocoded location",
		"operation", "geocode",
		"query", query,
		"latitude", loc.Latitude,
		"longitude", loc.Longitude,
	)

	return loc, nil
}

func (p nominatimPlace) location() (Location, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}
	return Location{Latitude: lat, Longitude: lon, DisplayName: p.DisplayName}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
