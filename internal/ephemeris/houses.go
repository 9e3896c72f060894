package ephemeris

import (
	"errors"
	"math"
)

const (
	HousesPlacidus = "placidus"
	HousesPorphyry = "porphyry"
)

// Houses holds the chart angles and twelve cusps, Cusps[0] being the first
// house. System names the method the cusps were computed with.
type Houses struct {
	Ascendant float64
	Midheaven float64
	Cusps     [12]float64
	System    string
}

var errCircumpolar = errors.New("placidus undefined for circumpolar cusp")

// computeHouses derives the angles and Placidus cusps. Above the polar
// circles Placidus has no solution for some cusps and Porphyry is used.
func computeHouses(jd, lat, lon float64) Houses {
	eps := Obliquity(jd)
	ramc := NormalizeDegrees(SiderealTime(jd) + lon)

	h := Houses{
		Midheaven: midheaven(ramc, eps),
		Ascendant: ascendant(ramc, eps, lat),
	}

	cusps, err := placidus(ramc, eps, lat)
	if err != nil {
		cusps = porphyry(h.Ascendant, h.Midheaven)
		h.System = HousesPorphyry
	} else {
		h.System = HousesPlacidus
	}
	cusps[0] = h.Ascendant
	cusps[9] = h.Midheaven
	// houses 4 to 9 sit opposite 10 to 3
	for _, i := range []int{9, 10, 11, 0, 1, 2} {
		cusps[(i+6)%12] = NormalizeDegrees(cusps[i] + 180)
	}
	h.Cusps = cusps

	return h
}

func midheaven(ramc, eps float64) float64 {
	return atan2Deg(sinDeg(ramc), cosDeg(ramc)*cosDeg(eps))
}

func ascendant(ramc, eps, lat float64) float64 {
	return atan2Deg(cosDeg(ramc), -(sinDeg(ramc)*cosDeg(eps) + tanDeg(lat)*sinDeg(eps)))
}

// eclipticFromRA returns the ecliptic longitude of the ecliptic point with
// the given right ascension.
func eclipticFromRA(ra, eps float64) float64 {
	return atan2Deg(sinDeg(ra), cosDeg(ra)*cosDeg(eps))
}

// placidus returns cusps 2, 3, 11 and 12 by iterating on the semi-arc of
// the cusp's own declination. The remaining slots are filled by the caller.
func placidus(ramc, eps, lat float64) ([12]float64, error) {
	var cusps [12]float64

	type trisection struct {
		index     int
		fraction  float64
		nocturnal bool
	}
	trisections := []trisection{
		{index: 10, fraction: 1.0 / 3},
		{index: 11, fraction: 2.0 / 3},
		{index: 1, fraction: 2.0 / 3, nocturnal: true},
		{index: 2, fraction: 1.0 / 3, nocturnal: true},
	}

	for _, tr := range trisections {
		lon, err := placidusCusp(ramc, eps, lat, tr.fraction, tr.nocturnal)
		if err != nil {
			return cusps, err
		}
		cusps[tr.index] = lon
	}

	return cusps, nil
}

func placidusCusp(ramc, eps, lat, fraction float64, nocturnal bool) (float64, error) {
	raFor := func(semiArc float64) float64 {
		if nocturnal {
			return ramc + 180 - fraction*semiArc
		}
		return ramc + fraction*semiArc
	}

	ra := raFor(90)
	for i := 0; i < 50; i++ {
		lambda := eclipticFromRA(ra, eps)
		decl := math.Asin(sinDeg(eps)*sinDeg(lambda)) * rad2deg

		x := tanDeg(lat) * tanDeg(decl)
		if math.Abs(x) >= 1 {
			return 0, errCircumpolar
		}
		ad := math.Asin(x) * rad2deg

		semiArc := 90 + ad
		if nocturnal {
			semiArc = 90 - ad
		}

		next := raFor(semiArc)
		if math.Abs(math.Remainder(next-ra, 360)) < 1e-9 {
			ra = next
			break
		}
		ra = next
	}

	return eclipticFromRA(ra, eps), nil
}

// porphyry trisects each quadrant between the angles in ecliptic longitude.
func porphyry(asc, mc float64) [12]float64 {
	var cusps [12]float64
	ic := NormalizeDegrees(mc + 180)

	upper := NormalizeDegrees(asc - mc)
	cusps[10] = NormalizeDegrees(mc + upper/3)
	cusps[11] = NormalizeDegrees(mc + 2*upper/3)

	lower := NormalizeDegrees(ic - asc)
	cusps[1] = NormalizeDegrees(asc + lower/3)
	cusps[2] = NormalizeDegrees(asc + 2*lower/3)

	return cusps
}
