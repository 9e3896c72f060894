package ephemeris

import "fmt"

// Body is the ephemeris code of a celestial body.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	NorthNode
)

var bodyNames = [...]string{
	Sun:       "Sun",
	Moon:      "Moon",
	Mercury:   "Mercury",
	Venus:     "Venus",
	Mars:      "Mars",
	Jupiter:   "Jupiter",
	Saturn:    "Saturn",
	Uranus:    "Uranus",
	Neptune:   "Neptune",
	Pluto:     "Pluto",
	NorthNode: "North Node",
}

func (b Body) String() string {
	if b.Valid() {
		return bodyNames[b]
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

func (b Body) Valid() bool {
	return b >= Sun && b <= NorthNode
}

// Bodies returns the fixed catalog of 11 bodies in chart order.
func Bodies() []Body {
	return []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, NorthNode}
}
