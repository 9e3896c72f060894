package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"birthchart-server/internal/ephemeris"
	"birthchart-server/internal/geocode"
	"birthchart-server/internal/shared/cache"
	"birthchart-server/internal/shared/errors"
)

type fakeGeocoder struct {
	locations map[string]geocode.Location
	err       error
	calls     int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, query string) (geocode.Location, error) {
	g.calls++
	if g.err != nil {
		return geocode.Location{}, g.err
	}
	if query == "" {
		return geocode.Location{}, geocode.ErrEmptyQuery
	}
	loc, ok := g.locations[query]
	if !ok {
		return geocode.Location{}, fmt.Errorf("%w: %q", geocode.ErrNotFound, query)
	}
	return loc, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(g geocode.Geocoder, p ephemeris.Provider, opts ServiceOptions) *Service {
	return NewService(g, NewBuilder(p), opts, testLogger())
}

func londonGeocoder() *fakeGeocoder {
	return &fakeGeocoder{locations: map[string]geocode.Location{"London": *london}}
}

func TestServiceCompute(t *testing.T) {
	s := newTestService(londonGeocoder(), ephemeris.New(), ServiceOptions{})

	result, err := s.Compute(context.Background(), Request{Moment: j2000, City: "London"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(result.Chart.Entries) != 13 {
		t.Fatalf("expected 13 entries, got %d", len(result.Chart.Entries))
	}
	if result.Chart.HouseSystem != WholeSign {
		t.Fatalf("expected default whole sign, got %s", result.Chart.HouseSystem)
	}
	if result.Chart.Location.DisplayName != "London" {
		t.Fatalf("location not carried through: %+v", result.Chart.Location)
	}
	for _, a := range result.Aspects {
		if a.Orb < 0 || a.Orb > a.Kind.Orb() {
			t.Errorf("aspect %+v outside its orb", a)
		}
	}
}

func TestServiceHouseSystemOverride(t *testing.T) {
	s := newTestService(londonGeocoder(), ephemeris.New(), ServiceOptions{DefaultSystem: Placidus})

	result, err := s.Compute(context.Background(), Request{Moment: j2000, City: "London"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.Chart.HouseSystem != Placidus {
		t.Fatalf("expected configured default placidus, got %s", result.Chart.HouseSystem)
	}

	whole := WholeSign
	result, err = s.Compute(context.Background(), Request{Moment: j2000, City: "London", HouseSystem: &whole})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if result.Chart.HouseSystem != WholeSign {
		t.Fatalf("expected per-request whole sign, got %s", result.Chart.HouseSystem)
	}
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		geocoder *fakeGeocoder
		req      Request
		wantType errors.ErrorType
		wantErr  error
	}{
		{
			name:     "unknown city",
			geocoder: londonGeocoder(),
			req:      Request{Moment: j2000, City: "Atlantis"},
			wantType: errors.ErrorTypeNotFound,
			wantErr:  ErrLocationNotFound,
		},
		{
			name:     "empty city",
			geocoder: londonGeocoder(),
			req:      Request{Moment: j2000},
			wantType: errors.ErrorTypeValidation,
			wantErr:  ErrInvalidParameter,
		},
		{
			name:     "invalid date",
			geocoder: londonGeocoder(),
			req:      Request{Moment: Moment{Year: 1990, Month: 2, Day: 30}, City: "London"},
			wantType: errors.ErrorTypeValidation,
			wantErr:  ErrInvalidDate,
		},
		{
			name:     "geocoder down",
			geocoder: &fakeGeocoder{err: fmt.Errorf("%w: timeout", geocode.ErrUpstream)},
			req:      Request{Moment: j2000, City: "London"},
			wantType: errors.ErrorTypeExternal,
			wantErr:  geocode.ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			s := newTestService(tt.geocoder, p, ServiceOptions{})

			result, err := s.Compute(context.Background(), tt.req)
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			if got := errors.GetType(err); got != tt.wantType {
				t.Fatalf("expected type %s, got %s (%v)", tt.wantType, got, err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v in chain, got %v", tt.wantErr, err)
			}
			if p.calls != 0 {
				t.Fatalf("ephemeris queried after failure")
			}
		})
	}
}

func TestServiceInvalidDateSkipsGeocoder(t *testing.T) {
	g := londonGeocoder()
	s := newTestService(g, &fakeProvider{}, ServiceOptions{})

	if _, err := s.Compute(context.Background(), Request{Moment: Moment{Year: 2001, Month: 2, Day: 29}, City: "London"}); err == nil {
		t.Fatalf("expected error")
	}
	if g.calls != 0 {
		t.Fatalf("geocoder called for an invalid date")
	}
}

func TestServiceCachesCharts(t *testing.T) {
	p := &fakeProvider{
		longitudes: map[ephemeris.Body]float64{ephemeris.Sun: 10, ephemeris.Moon: 190},
		houses:     ephemeris.Houses{Ascendant: 100, Midheaven: 10},
	}
	s := newTestService(londonGeocoder(), p, ServiceOptions{
		Cache:    cache.NewMemoryCache(10),
		CacheTTL: time.Hour,
	})

	first, err := s.Compute(context.Background(), Request{Moment: j2000, City: "London"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	calls := p.calls

	second, err := s.Compute(context.Background(), Request{Moment: j2000, City: "London"})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if p.calls != calls {
		t.Fatalf("second compute hit the ephemeris (%d calls, want %d)", p.calls, calls)
	}

	if len(second.Chart.Entries) != len(first.Chart.Entries) || len(second.Aspects) != len(first.Aspects) {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}
	for i := range first.Aspects {
		if first.Aspects[i] != second.Aspects[i] {
			t.Fatalf("aspect %d differs: %+v vs %+v", i, first.Aspects[i], second.Aspects[i])
		}
	}
	if second.Chart.HouseSystem != first.Chart.HouseSystem {
		t.Fatalf("house system lost in cache")
	}

	placidus := Placidus
	if _, err := s.Compute(context.Background(), Request{Moment: j2000, City: "London", HouseSystem: &placidus}); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if p.calls == calls {
		t.Fatalf("different house system must not share a cache entry")
	}
}
