package ephemeris

import (
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/solar"
)

// moonLongitude returns the Moon's apparent geocentric longitude at an
// ephemeris Julian Day.
func moonLongitude(jde float64) float64 {
	lon, _, _ := moonposition.Position(jde)
	dpsi, _ := nutation.Nutation(jde)
	return NormalizeDegrees((lon + dpsi).Deg())
}

// meanNode returns the longitude of the Moon's mean ascending node.
func meanNode(jde float64) float64 {
	return NormalizeDegrees(moonposition.Node(jde).Deg())
}

// sunLongitude returns the Sun's apparent longitude. With VSOP87 Earth
// data loaded the full theory is used, otherwise the chapter 25 series.
func sunLongitude(jde float64, earth *pp.V87Planet) float64 {
	if earth != nil {
		lon, _, _ := solar.ApparentVSOP87(earth, jde)
		return NormalizeDegrees(lon.Deg())
	}
	return NormalizeDegrees(solar.ApparentLongitude(base.J2000Century(jde)).Deg())
}
