package chart

import (
	"math"

	"birthchart-server/internal/ephemeris"
)

type Sign struct {
	Name  string `json:"name"`
	Glyph string `json:"glyph"`
}

var signs = [12]Sign{
	{"Aries", "♈"},
	{"Taurus", "♉"},
	{"Gemini", "♊"},
	{"Cancer", "♋"},
	{"Leo", "♌"},
	{"Virgo", "♍"},
	{"Libra", "♎"},
	{"Scorpio", "♏"},
	{"Sagittarius", "♐"},
	{"Capricorn", "♑"},
	{"Aquarius", "♒"},
	{"Pisces", "♓"},
}

// Signs returns the twelve signs starting at 0° Aries.
func Signs() []Sign {
	out := make([]Sign, len(signs))
	copy(out, signs[:])
	return out
}

// SignIndex returns floor(L/30) mod 12 for any finite longitude.
func SignIndex(longitude float64) int {
	return int(math.Floor(ephemeris.NormalizeDegrees(longitude)/30)) % 12
}

func SignOf(longitude float64) Sign {
	return signs[SignIndex(longitude)]
}
