package chart

import (
	"context"
	"fmt"
	"math"

	"birthchart-server/internal/ephemeris"
	"birthchart-server/internal/geocode"
)

const (
	minTZOffset = -12
	maxTZOffset = 14
)

// Builder turns a moment and a resolved location into a chart.
type Builder struct {
	provider ephemeris.Provider
}

func NewBuilder(provider ephemeris.Provider) *Builder {
	return &Builder{provider: provider}
}

// Validate checks the moment is a real civil time with a plausible offset.
func (m Moment) Validate() error {
	if math.IsNaN(m.TZOffset) || m.TZOffset < minTZOffset || m.TZOffset > maxTZOffset {
		return fmt.Errorf("%w: tz_offset %v outside [%d,%d]", ErrInvalidParameter, m.TZOffset, minTZOffset, maxTZOffset)
	}
	if err := ephemeris.ValidateDate(m.Year, m.Month, m.Day, m.Hour, m.Minute); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return nil
}

func (m Moment) JulianDay() float64 {
	return ephemeris.NormalizeTime(m.Year, m.Month, m.Day, m.Hour, m.Minute, m.TZOffset)
}

// BuildChart computes all 13 entries. A nil location is reported as
// ErrLocationNotFound. No partial chart is returned on error.
func (b *Builder) BuildChart(ctx context.Context, m Moment, loc *geocode.Location, system HouseSystem) (*Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	if system != WholeSign && system != Placidus {
		return nil, fmt.Errorf("%w: house system %d", ErrInvalidParameter, int(system))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	jd := m.JulianDay()

	houses, err := b.provider.Houses(jd, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: houses: %v", ErrEphemeris, err)
	}

	entries := make([]Entry, 0, len(ephemeris.Bodies())+2)
	for _, body := range ephemeris.Bodies() {
		lon, err := b.provider.Longitude(jd, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEphemeris, body, err)
		}
		lon = ephemeris.NormalizeDegrees(lon)
		entries = append(entries, newEntry(body.String(), lon, AssignHouse(system, lon, houses)))
	}

	asc := ephemeris.NormalizeDegrees(houses.Ascendant)
	mc := ephemeris.NormalizeDegrees(houses.Midheaven)
	entries = append(entries,
		newEntry(AscendantName, asc, 1),
		// the Midheaven is always reported in house 10, whatever its sign
		newEntry(MidheavenName, mc, 10),
	)

	c := &Chart{
		Moment:      m,
		Location:    *loc,
		JulianDay:   jd,
		HouseSystem: system,
		Entries:     entries,
		Houses:      WholeSignHouses(asc),
	}
	if system == Placidus {
		c.Cusps = append([]float64(nil), houses.Cusps[:]...)
		c.CuspSystem = houses.System
	}

	return c, nil
}

func newEntry(name string, lon float64, house int) Entry {
	sign := SignOf(lon)
	return Entry{
		Name:      name,
		Longitude: lon,
		Sign:      sign.Name,
		Glyph:     sign.Glyph,
		House:     house,
	}
}
