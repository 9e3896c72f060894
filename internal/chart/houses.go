package chart

import (
	"fmt"
	"strings"

	"birthchart-server/internal/ephemeris"
)

// HouseSystem selects how bodies are placed in houses. The zero value is
// WholeSign.
type HouseSystem int

const (
	WholeSign HouseSystem = iota
	Placidus
)

func (h HouseSystem) String() string {
	switch h {
	case WholeSign:
		return "whole_sign"
	case Placidus:
		return "placidus"
	default:
		return fmt.Sprintf("HouseSystem(%d)", int(h))
	}
}

func ParseHouseSystem(s string) (HouseSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whole_sign", "whole-sign", "wholesign":
		return WholeSign, nil
	case "placidus":
		return Placidus, nil
	default:
		return 0, fmt.Errorf("%w: unknown house system %q", ErrInvalidParameter, s)
	}
}

func (h HouseSystem) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HouseSystem) UnmarshalText(text []byte) error {
	parsed, err := ParseHouseSystem(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// AssignHouse places a longitude into a house 1..12.
func AssignHouse(system HouseSystem, longitude float64, houses ephemeris.Houses) int {
	if system == Placidus {
		return PlacidusHouse(longitude, houses.Cusps)
	}
	return WholeSignHouse(longitude, houses.Ascendant)
}

// PlacidusHouse returns 1 + the index of the first cusp greater than the
// longitude, or 12 when no cusp is. Cusps that wrap through 0° Aries are
// not unwrapped first, so bodies just past the wrap land in early houses.
func PlacidusHouse(longitude float64, cusps [12]float64) int {
	for i, cusp := range cusps {
		if cusp > longitude {
			return i + 1
		}
	}
	return 12
}

func WholeSignHouse(longitude, ascendant float64) int {
	return 1 + (SignIndex(longitude)-SignIndex(ascendant)+12)%12
}

// WholeSignHouses lists the sign names of houses 1..12 for an ascendant.
func WholeSignHouses(ascendant float64) []string {
	start := SignIndex(ascendant)
	out := make([]string, 12)
	for i := range out {
		out[i] = signs[(start+i)%12].Name
	}
	return out
}
