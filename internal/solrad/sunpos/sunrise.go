package sunpos

import (
	"math"
	"time"
)

const (
	jd2000 = 2451545.0
	rad    = 0.017453292519943295
	pi2    = math.Pi * 2.0
)

// DayBounds is the result of the Montenbruck/Pfleger abbreviated sunrise/
// sunset series: either a sunrise/sunset pair, or a polar-day/polar-night
// flag when the sun never crosses the horizon that day.
type DayBounds struct {
	Sunrise    time.Time
	Sunset     time.Time
	PolarDay   bool
	PolarNight bool
}

// CalcSunriseSunset computes the sunrise/sunset instants for the UTC day
// containing utc, at the given latitude/longitude in degrees, matching
// calc_sunrise_and_set.
func CalcSunriseSunset(utc time.Time, latDeg, lonDeg float64) DayBounds {
	jd := toJulian(utc)
	t := (jd - jd2000) / 36525.0
	h := -50.0 / 60.0 * rad
	b := latDeg * rad

	raD, dk := berechneZeitgleichung(t)

	aux := (math.Sin(h) - math.Sin(b)*math.Sin(dk)) / (math.Cos(b) * math.Cos(dk))
	switch {
	case aux >= 1.0:
		return DayBounds{PolarNight: true}
	case aux <= -1.0:
		return DayBounds{PolarDay: true}
	}

	zeitdifferenz := 12.0 * math.Acos(aux) / math.Pi

	aufgangLokal := 12.0 - zeitdifferenz - raD
	untergangLokal := 12.0 + zeitdifferenz - raD
	aufgangWelt := aufgangLokal - lonDeg/15.0
	untergangWelt := untergangLokal - lonDeg/15.0
	jdStart := math.Floor(jd + 0.5)

	aufgangJD := jdStart - 0.5 + (aufgangWelt / 24.0)
	untergangJD := jdStart - 0.5 + (untergangWelt / 24.0)

	return DayBounds{
		Sunrise: toUTC(aufgangJD),
		Sunset:  toUTC(untergangJD),
	}
}

func toUTC(jd float64) time.Time {
	secsSinceEpoch := (jd - 2440587.5) * 86400.0
	secs := math.Trunc(secsSinceEpoch)
	nanos := (secsSinceEpoch - secs) * 1e9
	return time.Unix(int64(secs), int64(nanos)).UTC()
}

func toJulian(utc time.Time) float64 {
	secondsSinceEpoch := float64(utc.Unix())
	return secondsSinceEpoch/86400.0 + 2440587.5
}

// berechneZeitgleichung returns (delta-ascension in hours, declination in
// radians) for time t measured in Julian centuries since J2000.0.
func berechneZeitgleichung(t float64) (float64, float64) {
	raMittel := 18.71506921 + 2400.0513369*t + (2.5862e-5-1.72e-9*t)*t*t

	m := inPi(pi2 * (0.993133 + 99.997361*t))
	l := inPi(pi2 * (0.7859453 + m/pi2 + (6893.0*math.Sin(m)+72.0*math.Sin(2.0*m)+6191.2*t)/1296.0e3))
	e := eps(t)
	ra := math.Atan(math.Tan(l) * math.Cos(e))

	if ra < 0.0 {
		ra += math.Pi
	}
	if l > math.Pi {
		ra += math.Pi
	}

	ra = 24.0 * ra / pi2

	dk := math.Asin(math.Sin(e) * math.Sin(l))

	raMittel = 24.0 * inPi(pi2*raMittel/24.0) / pi2

	dRa := raMittel - ra
	if dRa < -12.0 {
		dRa += 24.0
	}
	if dRa > 12.0 {
		dRa -= 24.0
	}
	dRa *= 1.0027379

	return dRa, dk
}

func inPi(x float64) float64 {
	n := math.Trunc(x / pi2)
	result := x - n*pi2
	if result < 0.0 {
		return result + pi2
	}
	return result
}

func eps(t float64) float64 {
	return rad * (23.43929111 + ((-46.8150)*t-0.00059*t*t+0.001813*t*t*t)/3600.0)
}
