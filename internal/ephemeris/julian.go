package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// J2000 is the Julian Day of 2000-01-01 12:00 TT.
const J2000 = base.J2000

// NormalizeTime converts a civil birth moment to a Julian Day in UT.
// tzOffset is in hours east of UTC; minute may be fractional. The Gregorian
// calendar is assumed for every date and no calendar validation happens
// here, see ValidateDate.
func NormalizeTime(year, month, day, hour int, minute, tzOffset float64) float64 {
	ut := float64(hour) + minute/60.0 - tzOffset
	return julian.CalendarGregorianToJD(year, month, float64(day)+ut/24.0)
}

// ValidateDate reports whether year/month/day/hour/minute name a real
// civil time. Feb 30, hour 24 and minute 60 are rejected.
func ValidateDate(year, month, day, hour int, minute float64) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range 1-12", month)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if math.IsNaN(minute) || minute < 0 || minute >= 60 {
		return fmt.Errorf("minute %v out of range [0,60)", minute)
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DeltaT returns TT-UT in seconds. Table 10.A covers 1620 to 2009 and the
// polynomials take over on either side.
func DeltaT(jd float64) float64 {
	year := base.JDEToJulianYear(jd)
	switch {
	case year < 948:
		return deltat.PolyBefore948(year).Sec()
	case year < 1621:
		return deltat.Poly948to1600(year).Sec()
	case year < 2009:
		return deltat.Interp10A(jd).Sec()
	default:
		return deltat.PolyAfter2000(year).Sec()
	}
}

// terrestrial converts a UT Julian Day to an ephemeris (TT) Julian Day.
func terrestrial(jd float64) float64 {
	return jd + DeltaT(jd)/86400
}

// SiderealTime returns Greenwich mean sidereal time in degrees for a UT
// Julian Day.
func SiderealTime(jd float64) float64 {
	return NormalizeDegrees(sidereal.Mean(jd).Rad() * rad2deg)
}

// Obliquity returns the mean obliquity of the ecliptic in degrees.
func Obliquity(jd float64) float64 {
	return nutation.MeanObliquity(jd).Deg()
}
