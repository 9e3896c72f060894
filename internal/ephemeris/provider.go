package ephemeris

import (
	"errors"
	"fmt"
	"math"

	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
)

var (
	ErrUnknownBody      = errors.New("unknown body")
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidJulianDay = errors.New("invalid julian day")
)

// Provider answers ecliptic longitude and house queries for a UT Julian Day.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Longitude(jd float64, body Body) (float64, error)
	Houses(jd, lat, lon float64) (Houses, error)
}

// Analytic computes positions from Meeus' algorithms. Planets come from
// VSOP87 when Open is given the data files and from Keplerian elements
// otherwise, which is good to a few arcminutes over 1800-2050. The Moon
// uses the full chapter 47 series and Pluto the chapter 37 theory.
// It is immutable after construction.
type Analytic struct {
	name    string
	planets map[Body]heliocentric
	earth   heliocentric
	vsop    *pp.V87Planet
}

func New() *Analytic {
	a := &Analytic{
		name:    "meeus",
		planets: make(map[Body]heliocentric, len(orbits)+1),
		earth:   earthOrbit.position2000,
	}
	for body, o := range orbits {
		a.planets[body] = o.position2000
	}
	a.planets[Pluto] = pluto.Heliocentric
	return a
}

var vsopBodies = map[Body]int{
	Mercury: pp.Mercury,
	Venus:   pp.Venus,
	Mars:    pp.Mars,
	Jupiter: pp.Jupiter,
	Saturn:  pp.Saturn,
	Uranus:  pp.Uranus,
	Neptune: pp.Neptune,
}

// Open loads the VSOP87B files (VSOP87B.ear, VSOP87B.mer, ...) from dir.
func Open(dir string) (*Analytic, error) {
	a := New()

	earth, err := pp.LoadPlanetPath(pp.Earth, dir)
	if err != nil {
		return nil, fmt.Errorf("load vsop87 earth: %w", err)
	}
	a.vsop = earth
	a.earth = earth.Position2000

	for body, ibody := range vsopBodies {
		planet, err := pp.LoadPlanetPath(ibody, dir)
		if err != nil {
			return nil, fmt.Errorf("load vsop87 %s: %w", body, err)
		}
		a.planets[body] = planet.Position2000
	}

	a.name = "vsop87"
	return a, nil
}

// Load opens dir when it is set and uses the element tables otherwise.
func Load(dir string) (*Analytic, error) {
	if dir == "" {
		return New(), nil
	}
	return Open(dir)
}

func (a *Analytic) Name() string {
	return a.name
}

func (a *Analytic) Longitude(jd float64, body Body) (float64, error) {
	if err := checkJulianDay(jd); err != nil {
		return 0, err
	}
	if !body.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBody, int(body))
	}

	jde := terrestrial(jd)

	switch body {
	case Sun:
		return sunLongitude(jde, a.vsop), nil
	case Moon:
		return moonLongitude(jde), nil
	case NorthNode:
		return meanNode(jde), nil
	default:
		return geocentricLongitude(jde, a.planets[body], a.earth), nil
	}
}

func (a *Analytic) Houses(jd, lat, lon float64) (Houses, error) {
	if err := checkJulianDay(jd); err != nil {
		return Houses{}, err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat <= -90 || lat >= 90 || lon < -180 || lon > 180 {
		return Houses{}, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidLocation, lat, lon)
	}
	return computeHouses(jd, lat, lon), nil
}

func checkJulianDay(jd float64) error {
	if math.IsNaN(jd) || math.IsInf(jd, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidJulianDay, jd)
	}
	return nil
}
