package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/unit"
)

// heliocentric returns J2000 ecliptic heliocentric longitude, latitude and
// range in au. V87Planet.Position2000 and pluto.Heliocentric both fit.
type heliocentric func(jde float64) (l, b unit.Angle, r float64)

// orbit holds J2000 Keplerian elements and their rates per Julian century
// (Standish, "Approximate Positions of the Planets", 1800-2050 table).
type orbit struct {
	a, e, i, l, peri, node                   float64
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

var orbits = map[Body]orbit{
	Mercury: {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	Venus: {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	Mars: {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	Jupiter: {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	Saturn: {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	Uranus: {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	Neptune: {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
}

// Earth-Moon barycentre.
var earthOrbit = orbit{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
	0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0}

func (o orbit) position2000(jde float64) (l, b unit.Angle, r float64) {
	t := base.J2000Century(jde)

	a := o.a + o.aDot*t
	e := o.e + o.eDot*t
	inc := unit.AngleFromDeg(o.i + o.iDot*t)
	peri := o.peri + o.periDot*t
	node := o.node + o.nodeDot*t
	m := unit.AngleFromDeg(math.Remainder(o.l+o.lDot*t-peri, 360))

	ecc, err := kepler.Kepler2(e, m, 10)
	if err != nil {
		ecc = kepler.Kepler3(e, m)
	}
	r = kepler.Radius(ecc, e, a)

	// argument of latitude
	u := kepler.True(ecc, e) + unit.AngleFromDeg(peri-node)
	su, cu := u.Sincos()
	sn, cn := unit.AngleFromDeg(node).Sincos()
	si, ci := inc.Sincos()

	x := cn*cu - sn*su*ci
	y := sn*cu + cn*su*ci
	z := su * si

	return unit.Angle(math.Atan2(y, x)), unit.Angle(math.Asin(z)), r
}

type vec3 struct{ x, y, z float64 }

func cartesian(l, b unit.Angle, r float64) vec3 {
	sl, cl := l.Sincos()
	sb, cb := b.Sincos()
	return vec3{r * cb * cl, r * cb * sl, r * sb}
}

func (v vec3) sub(o vec3) vec3 { return vec3{v.x - o.x, v.y - o.y, v.z - o.z} }

func (v vec3) length() float64 { return math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z) }

// geocentricLongitude returns the apparent longitude of date of body as
// seen from earth. Positions are corrected for light time, precessed from
// J2000 and shifted by nutation in longitude.
func geocentricLongitude(jde float64, body, earth heliocentric) float64 {
	e := cartesian(earth(jde))

	var g vec3
	tau := 0.0
	for i := 0; i < 2; i++ {
		g = cartesian(body(jde - tau)).sub(e)
		tau = base.LightTime(g.length())
	}

	ecl := &coord.Ecliptic{
		Lon: unit.Angle(math.Atan2(g.y, g.x)),
		Lat: unit.Angle(math.Atan2(g.z, math.Hypot(g.x, g.y))),
	}
	precess.EclipticPosition(ecl, ecl, 2000, base.JDEToJulianYear(jde), 0, 0)

	dpsi, _ := nutation.Nutation(jde)
	return NormalizeDegrees((ecl.Lon + dpsi).Deg())
}
