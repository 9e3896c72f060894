package geocode

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"birthchart-server/internal/shared/cache"
	"birthchart-server/internal/shared/metrics"

	"golang.org/x/sync/singleflight"
)

// Cached memoizes successful lookups and collapses concurrent lookups of
// the same query into one upstream request. Misses are not cached.
type Cached struct {
	next    Geocoder
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func NewCached(next Geocoder, c cache.Cache, ttl time.Duration, recorder *metrics.Recorder) *Cached {
	return &Cached{
		next:    next,
		cache:   c,
		ttl:     ttl,
		metrics: recorder,
		logger:  slog.With("component", "geocode", "provider", "cache"),
	}
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (c *Cached) Geocode(ctx context.Context, query string) (Location, error) {
	if strings.TrimSpace(query) == "" {
		return Location{}, ErrEmptyQuery
	}
	key := cacheKey(query)

	var loc Location
	err := c.cache.Get(ctx, key, &loc)
	if err == nil {
		c.metrics.CacheLookup("geocode", true)
		return loc, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("Geocode cache read failed", "operation", "geocode", "error", err)
	}
	c.metrics.CacheLookup("geocode", false)

	// the shared lookup outlives any single caller's cancellation
	ch := c.group.DoChan(key, func() (interface{}, error) {
		lookupCtx := context.WithoutCancel(ctx)

		loc, err := c.next.Geocode(lookupCtx, query)
		if err != nil {
			return Location{}, err
		}
		if err := c.cache.Set(lookupCtx, key, loc, c.ttl); err != nil {
			c.logger.Warn("Geocode cache write failed", "operation", "geocode", "error", err)
		}
		return loc, nil
	})

	select {
	case <-ctx.Done():
		return Location{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Location{}, res.Err
		}
		if res.Shared {
			c.logger.Debug("Geocode lookup shared", "operation", "geocode", "key", key)
		}
		return res.Val.(Location), nil
	}
}
