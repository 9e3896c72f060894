package ephemeris

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// NormalizeDegrees maps any finite angle into [0,360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// -1e-15 + 360 rounds to 360
	if d >= 360 {
		d = 0
	}
	return d
}

func sinDeg(d float64) float64 { return math.Sin(d * deg2rad) }
func cosDeg(d float64) float64 { return math.Cos(d * deg2rad) }
func tanDeg(d float64) float64 { return math.Tan(d * deg2rad) }

func atan2Deg(y, x float64) float64 {
	return NormalizeDegrees(math.Atan2(y, x) * rad2deg)
}
