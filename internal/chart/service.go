package chart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"birthchart-server/internal/geocode"
	"birthchart-server/internal/shared/cache"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/metrics"
)

// Request is a chart query as it arrives from a caller. A nil HouseSystem
// selects the service default.
type Request struct {
	Moment
	City        string
	HouseSystem *HouseSystem
}

type Service struct {
	geocoder      geocode.Geocoder
	builder       *Builder
	cache         cache.Cache
	cacheTTL      time.Duration
	defaultSystem HouseSystem
	store         SavedChartStore
	metrics       *metrics.Recorder
	logger        *slog.Logger
}

type ServiceOptions struct {
	Cache         cache.Cache
	CacheTTL      time.Duration
	DefaultSystem HouseSystem
	Store         SavedChartStore // nil when the database is disabled
	Metrics       *metrics.Recorder
}

func NewService(geocoder geocode.Geocoder, builder *Builder, opts ServiceOptions, logger *slog.Logger) *Service {
	logger.Debug("Initializing chart service", "default_house_system", opts.DefaultSystem)

	return &Service{
		geocoder:      geocoder,
		builder:       builder,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		defaultSystem: opts.DefaultSystem,
		store:         opts.Store,
		metrics:       opts.Metrics,
		logger:        logger,
	}
}

func (s *Service) DefaultHouseSystem() HouseSystem {
	return s.defaultSystem
}

// Compute resolves the city, builds the chart and finds its aspects.
// Errors are AppErrors wrapping the package sentinels.
func (s *Service) Compute(ctx context.Context, req Request) (*Result, error) {
	system := s.defaultSystem
	if req.HouseSystem != nil {
		system = *req.HouseSystem
	}

	logger := s.logger.With(
		"component", "chart_service",
		"operation", "compute",
		"city", req.City,
		"house_system", system,
	)

	if err := req.Moment.Validate(); err != nil {
		s.metrics.ChartFailed("validation")
		return nil, errors.WrapValidation(err.Error(), err)
	}

	loc, err := s.geocoder.Geocode(ctx, req.City)
	if err != nil {
		s.metrics.ChartFailed("geocode")
		return nil, geocodeError(req.City, err)
	}

	key := resultCacheKey(req.Moment, loc, system)
	if s.cache != nil {
		var cached Result
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached.Chart != nil {
			s.metrics.CacheLookup("chart", true)
			logger.Debug("Chart served from cache")
			return &cached, nil
		}
		s.metrics.CacheLookup("chart", false)
	}

	start := time.Now()
	c, err := s.builder.BuildChart(ctx, req.Moment, &loc, system)
	if err != nil {
		appErr := buildError(err)
		s.metrics.ChartFailed(string(errors.GetType(appErr)))
		return nil, appErr
	}
	result := &Result{Chart: c, Aspects: FindAspects(c)}
	s.metrics.ChartComputed(system.String(), time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache chart", "error", err)
		}
	}

	logger.Debug("Chart computed",
		"julian_day", c.JulianDay,
		"aspects", len(result.Aspects),
		"duration", time.Since(start),
	)

	return result, nil
}

func resultCacheKey(m Moment, loc geocode.Location, system HouseSystem) string {
	return fmt.Sprintf("chart:%04d-%02d-%02dT%02d:%g%+g:%.6f,%.6f:%s",
		m.Year, m.Month, m.Day, m.Hour, m.Minute, m.TZOffset,
		loc.Latitude, loc.Longitude, system)
}

func geocodeError(city string, err error) error {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return errors.WrapNotFound(fmt.Sprintf("city %q not found", city), fmt.Errorf("%w: %v", ErrLocationNotFound, err))
	case errors.Is(err, geocode.ErrEmptyQuery):
		return errors.WrapValidation("city is required", fmt.Errorf("%w: %v", ErrInvalidParameter, err))
	case errors.Is(err, geocode.ErrUpstream):
		return errors.WrapExternal("geocoding service unavailable", err)
	default:
		return errors.WrapInternal("failed to resolve city", err)
	}
}

func buildError(err error) error {
	switch {
	case errors.Is(err, ErrLocationNotFound):
		return errors.WrapNotFound("location not found", err)
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidParameter):
		return errors.WrapValidation(err.Error(), err)
	default:
		return errors.WrapInternal("failed to compute chart", err)
	}
}
