package provider

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/pluto"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/model"
)

const (
	// lightTimeDays is the light time for one AU, in days.
	lightTimeDays = 0.0057755183
	// lightTimeIterations is enough for light time to settle below 1e-9 days.
	lightTimeIterations = 3

	// aberrationConstant is κ in degrees.
	aberrationConstant = 20.49552 / 3600
	// sunAberration is the aberration of the Sun at 1 AU, in degrees.
	sunAberration = 20.4898 / 3600

	// The Pluto series is only fitted for 1885..2099.
	plutoFirstJDE = 2409542.5
	plutoLastJDE  = 2488069.5
)

func (m *Meeus) sun(jde float64) (lon, lat, dist float64, err error) {
	if m.earth == nil {
		return 0, 0, 0, fmt.Errorf("%w: Sun: %v", core.ErrUnsupportedBody, errNoEarth)
	}
	l, b, r := m.earth.Position(jde)
	return l.Deg() + 180 - sunAberration/r, -b.Deg(), r, nil
}

// planet returns the geocentric position of a VSOP87 planet corrected for
// light time and aberration, without nutation.
func (m *Meeus) planet(jde float64, body model.Body) (lon, lat, dist float64, err error) {
	p, ok := m.planets[body]
	if !ok || m.earth == nil {
		return 0, 0, 0, fmt.Errorf("%w: no VSOP87 series for %v", core.ErrUnsupportedBody, body)
	}

	l0, b0, r0 := m.earth.Position(jde)
	earth := core.VecFromSpherical(l0.Deg(), b0.Deg(), r0)

	var geo core.Vec3
	tau := 0.0
	for i := 0; i < lightTimeIterations; i++ {
		l, b, r := p.Position(jde - tau)
		geo = core.VecFromSpherical(l.Deg(), b.Deg(), r).Sub(earth)
		tau = lightTimeDays * geo.Norm()
	}

	lon, lat, dist = geo.Spherical()
	dlon, dlat := aberration(jde, lon, lat, l0.Deg()+180)
	return lon + dlon, lat + dlat, dist, nil
}

// pluto works in the J2000 frame of the Pluto series and precesses the
// geocentric result to the ecliptic of date.
func (m *Meeus) pluto(jde float64) (lon, lat, dist float64, err error) {
	if jde < plutoFirstJDE || jde >= plutoLastJDE {
		return 0, 0, 0, fmt.Errorf("%w: Pluto series covers JDE %.1f..%.1f, got %.5f",
			core.ErrUnsupportedBody, plutoFirstJDE, plutoLastJDE, jde)
	}
	if m.earth == nil {
		return 0, 0, 0, fmt.Errorf("%w: Pluto: %v", core.ErrUnsupportedBody, errNoEarth)
	}

	l0, b0, r0 := m.earth.Position2000(jde)
	earth := core.VecFromSpherical(l0.Deg(), b0.Deg(), r0)

	var geo core.Vec3
	tau := 0.0
	for i := 0; i < lightTimeIterations; i++ {
		l, b, r := pluto.Heliocentric(jde - tau)
		geo = core.VecFromSpherical(l.Deg(), b.Deg(), r).Sub(earth)
		tau = lightTimeDays * geo.Norm()
	}

	lon2000, lat2000, dist := geo.Spherical()
	lon, lat = core.PrecessEcliptic(lon2000, lat2000, jde)

	sunLon, _, _, err := m.sun(jde)
	if err != nil {
		return 0, 0, 0, err
	}
	dlon, dlat := aberration(jde, lon, lat, sunLon)
	return lon + dlon, lat + dlat, dist, nil
}

// aberration returns the annual aberration in longitude and latitude for a
// body at (lon, lat) given the Sun's geometric longitude (Meeus eq. 23.2).
func aberration(jde, lon, lat, sunLon float64) (dlon, dlat float64) {
	t := core.JulianCenturies(jde)
	e := 0.016708634 - 0.000042037*t - 0.0000001267*t*t
	perihelion := 102.93735 + 1.71946*t + 0.00046*t*t

	dlon = (-aberrationConstant*cosd(sunLon-lon) + e*aberrationConstant*cosd(perihelion-lon)) / cosd(lat)
	dlat = -aberrationConstant * sind(lat) * (sind(sunLon-lon) - e*sind(perihelion-lon))
	return dlon, dlat
}

func sind(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func cosd(d float64) float64 { return math.Cos(d * math.Pi / 180) }
