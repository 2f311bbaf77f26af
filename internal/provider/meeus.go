// Package provider holds ephemeris providers backed by analytic theories.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	pp "github.com/soniakeys/meeus/v3/planetposition"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/logging"
	"github.com/signalsfoundry/ephemref/model"
)

// speedStep is the half-width, in days, of the central difference used to
// derive speeds.
const speedStep = 0.01

// vsopIndex maps bodies to planetposition's VSOP87 file indices.
var vsopIndex = map[model.Body]int{
	model.Mercury: pp.Mercury,
	model.Venus:   pp.Venus,
	model.Mars:    pp.Mars,
	model.Jupiter: pp.Jupiter,
	model.Saturn:  pp.Saturn,
	model.Uranus:  pp.Uranus,
	model.Neptune: pp.Neptune,
}

// Meeus computes apparent geocentric ecliptic positions of date from VSOP87
// (planets), ELP (Moon), the Meeus Pluto theory and closed-form lunar node
// and apogee series. It is immutable after construction and safe for
// concurrent use.
type Meeus struct {
	earth   *pp.V87Planet
	planets map[model.Body]*pp.V87Planet
}

// NewMeeus loads the VSOP87 files found in vsop87Dir. An empty dir yields a
// provider that serves only the Moon, the nodes and the mean apogee. Missing
// files are logged and the corresponding bodies report ErrUnsupportedBody.
func NewMeeus(vsop87Dir string, log logging.Logger) (*Meeus, error) {
	if log == nil {
		log = logging.Noop()
	}
	m := &Meeus{planets: make(map[model.Body]*pp.V87Planet)}
	ctx := context.Background()

	if vsop87Dir == "" {
		log.Warn(ctx, "no VSOP87 directory configured; planets, Sun and Pluto unavailable")
		return m, nil
	}
	if fi, err := os.Stat(vsop87Dir); err != nil {
		return nil, fmt.Errorf("vsop87 dir: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("vsop87 dir %q is not a directory", vsop87Dir)
	}

	earth, err := pp.LoadPlanetPath(pp.Earth, vsop87Dir)
	if err != nil {
		log.Warn(ctx, "earth series unavailable; planets, Sun and Pluto disabled",
			logging.String("dir", vsop87Dir), logging.Err(err))
		return m, nil
	}
	m.earth = earth

	for body, idx := range vsopIndex {
		p, err := pp.LoadPlanetPath(idx, vsop87Dir)
		if err != nil {
			log.Warn(ctx, "planet series unavailable",
				logging.String("body", body.String()), logging.Err(err))
			continue
		}
		m.planets[body] = p
	}
	log.Info(ctx, "loaded VSOP87 series",
		logging.String("dir", vsop87Dir), logging.Int("planets", len(m.planets)))
	return m, nil
}

// Name implements core.EphemerisProvider.
func (m *Meeus) Name() string { return "meeus-vsop87" }

// Query implements core.EphemerisProvider. ΔT is applied here, once.
func (m *Meeus) Query(jdUT float64, body model.Body, flags core.QueryFlags) (model.BodyPosition, error) {
	if !body.Valid() {
		return model.BodyPosition{}, fmt.Errorf("%w: %v", core.ErrUnsupportedBody, body)
	}
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		return model.BodyPosition{}, fmt.Errorf("%w: julian day %v", core.ErrInvalidMoment, jdUT)
	}
	return m.positionTT(core.ToTT(jdUT), body, flags)
}

func (m *Meeus) positionTT(jde float64, body model.Body, flags core.QueryFlags) (model.BodyPosition, error) {
	lon, lat, dist, err := m.apparent(jde, body)
	if err != nil {
		return model.BodyPosition{}, err
	}
	pos := model.BodyPosition{
		Body:      body,
		Longitude: lon,
		Latitude:  lat,
		Distance:  dist,
	}
	if !flags.IncludeSpeed {
		return pos, nil
	}

	lon0, lat0, _, err := m.apparent(jde-speedStep, body)
	if err != nil {
		return model.BodyPosition{}, err
	}
	lon1, lat1, _, err := m.apparent(jde+speedStep, body)
	if err != nil {
		return model.BodyPosition{}, err
	}
	pos.LongitudeSpeed = core.AngleDiff(lon1, lon0) / (2 * speedStep)
	pos.LatitudeSpeed = (lat1 - lat0) / (2 * speedStep)
	return pos, nil
}

// apparent returns longitude [0,360), latitude and distance in AU, referred
// to the true equinox of date.
func (m *Meeus) apparent(jde float64, body model.Body) (lon, lat, dist float64, err error) {
	dpsi, _ := core.Nutation(jde)

	switch body {
	case model.Sun:
		lon, lat, dist, err = m.sun(jde)
	case model.Moon:
		lon, lat, dist = moon(jde)
	case model.Pluto:
		lon, lat, dist, err = m.pluto(jde)
	case model.MeanNode:
		lon, lat, dist = meanNode(jde), 0, nodeDistance
	case model.TrueNode:
		lon, lat, dist = trueNode(jde), 0, nodeDistance
	case model.MeanApogee:
		lon, lat, dist = meanApogee(jde)
	default:
		lon, lat, dist, err = m.planet(jde, body)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return core.Normalize(lon + dpsi), lat, dist, nil
}

var errNoEarth = errors.New("earth series not loaded")
