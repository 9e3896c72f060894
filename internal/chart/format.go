package chart

import (
	"fmt"
	"math"

	"birthchart-server/internal/ephemeris"
)

// FormatDegrees renders an angle as D°MM', truncating to whole minutes.
func FormatDegrees(deg float64) string {
	neg := deg < 0
	deg = math.Abs(deg)
	d := math.Floor(deg)
	m := math.Floor((deg - d) * 60)
	// 59.9999' truncates to 59, never to 60
	if m >= 60 {
		m = 59
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d°%02d'", sign, int(d), int(m))
}

// FormatPosition renders a longitude as degrees within its sign, e.g.
// 10°22' Capricorn.
func FormatPosition(longitude float64) string {
	longitude = ephemeris.NormalizeDegrees(longitude)
	within := longitude - float64(SignIndex(longitude))*30
	return FormatDegrees(within) + " " + SignOf(longitude).Name
}
