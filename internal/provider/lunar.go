package provider

import (
	"math"

	"github.com/soniakeys/meeus/v3/moonposition"

	"github.com/signalsfoundry/ephemref/core"
)

const (
	kmPerAU = 149597870.7

	// nodeDistance is the mean Earth-Moon distance, reported for the nodes.
	nodeDistance = 0.002573570
	// apogeeDistance is a(1+e) of the mean lunar orbit.
	apogeeDistance = 0.0027106
	// lunarInclination is the mean inclination of the lunar orbit.
	lunarInclination = 5.145396
)

// moon returns the ELP-2000 position; Position omits nutation.
func moon(jde float64) (lon, lat, dist float64) {
	l, b, km := moonposition.Position(jde)
	return l.Deg(), b.Deg(), km / kmPerAU
}

// lunarArguments returns D, M, M' and F of Meeus ch. 47 in degrees.
func lunarArguments(t float64) (d, m, mp, f float64) {
	d = poly(t, 297.8501921, 445267.1114034, -0.0018819, 1.0/545868, -1.0/113065000)
	m = poly(t, 357.5291092, 35999.0502909, -0.0001536, 1.0/24490000)
	mp = poly(t, 134.9633964, 477198.8675055, 0.0087414, 1.0/69699, -1.0/14712000)
	f = poly(t, 93.2720950, 483202.0175233, -0.0036539, -1.0/3526000, 1.0/863310000)
	return d, m, mp, f
}

func meanNode(jde float64) float64 {
	t := core.JulianCenturies(jde)
	return core.Normalize(poly(t, 125.0445479, -1934.1362891, 0.0020754, 1.0/467441, -1.0/60616000))
}

func trueNode(jde float64) float64 {
	d, m, mp, f := lunarArguments(core.JulianCenturies(jde))
	return core.Normalize(meanNode(jde) -
		1.4979*sind(2*(d-f)) -
		0.1500*sind(m) -
		0.1226*sind(2*d) +
		0.1176*sind(2*f) -
		0.0801*sind(2*(mp-f)))
}

// meanApogee places the mean apogee on the mean lunar orbit and projects it
// onto the ecliptic, so it carries a latitude of up to the inclination.
func meanApogee(jde float64) (lon, lat, dist float64) {
	t := core.JulianCenturies(jde)
	perigee := poly(t, 83.3532465, 4069.0137287, -0.0103200, -1.0/80053, 1.0/18999000)
	node := meanNode(jde)

	u := perigee + 180 - node
	lon = node + math.Atan2(sind(u)*cosd(lunarInclination), cosd(u))*180/math.Pi
	lat = math.Asin(sind(u)*sind(lunarInclination)) * 180 / math.Pi
	return core.Normalize(lon), lat, apogeeDistance
}

// poly evaluates c[0] + c[1]t + c[2]t² + ...
func poly(t float64, c ...float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*t + c[i]
	}
	return r
}
