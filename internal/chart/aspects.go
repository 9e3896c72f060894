package chart

import (
	"fmt"
	"math"

	"birthchart-server/internal/ephemeris"

	"github.com/shopspring/decimal"
)

type AspectKind int

const (
	Conjunction AspectKind = iota
	Sextile
	Square
	Trine
	Opposition
)

type aspectDef struct {
	name  string
	angle float64
	orb   float64
}

var aspectDefs = [...]aspectDef{
	Conjunction: {"Conjunction", 0, 8},
	Sextile:     {"Sextile", 60, 4},
	Square:      {"Square", 90, 6},
	Trine:       {"Trine", 120, 6},
	Opposition:  {"Opposition", 180, 6},
}

// AspectKinds returns the five major aspects.
func AspectKinds() []AspectKind {
	return []AspectKind{Conjunction, Sextile, Square, Trine, Opposition}
}

func (k AspectKind) valid() bool {
	return k >= Conjunction && k <= Opposition
}

func (k AspectKind) String() string {
	if k.valid() {
		return aspectDefs[k].name
	}
	return fmt.Sprintf("AspectKind(%d)", int(k))
}

func (k AspectKind) Angle() float64 { return aspectDefs[k].angle }

// Orb is the maximum allowed deviation from Angle.
func (k AspectKind) Orb() float64 { return aspectDefs[k].orb }

func (k AspectKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("invalid aspect kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *AspectKind) UnmarshalText(text []byte) error {
	for _, kind := range AspectKinds() {
		if aspectDefs[kind].name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown aspect %q", text)
}

type Aspect struct {
	Kind  AspectKind `json:"aspect"`
	BodyA string     `json:"body_a"`
	BodyB string     `json:"body_b"`
	Orb   float64    `json:"orb"`
}

// CircularDistance is the shorter arc between two longitudes, in [0,180].
func CircularDistance(a, b float64) float64 {
	d := math.Abs(ephemeris.NormalizeDegrees(a) - ephemeris.NormalizeDegrees(b))
	return math.Min(d, 360-d)
}

// FindAspects checks every unordered pair of entries, angles included,
// against every aspect. A pair can match more than one aspect when orbs
// overlap. Orbs are rounded to two decimals.
func FindAspects(c *Chart) []Aspect {
	var out []Aspect
	for i := 0; i < len(c.Entries); i++ {
		for j := i + 1; j < len(c.Entries); j++ {
			a, b := c.Entries[i], c.Entries[j]
			dist := CircularDistance(a.Longitude, b.Longitude)
			for _, kind := range AspectKinds() {
				deviation := math.Abs(dist - kind.Angle())
				if deviation > kind.Orb() {
					continue
				}
				orb, _ := decimal.NewFromFloat(deviation).Round(2).Float64()
				out = append(out, Aspect{Kind: kind, BodyA: a.Name, BodyB: b.Name, Orb: orb})
			}
		}
	}
	return out
}
