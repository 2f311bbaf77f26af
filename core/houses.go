package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/ephemref/model"
)

const (
	// maxCuspIterations bounds the Placidus cusp solver.
	maxCuspIterations = 100
	// cuspTolerance is the width, in degrees of right ascension, below which
	// the bracket around a cusp is considered converged.
	cuspTolerance = 1e-9
)

// placidusCusp describes an intermediate cusp as a fraction of the diurnal
// (above) or nocturnal (below) semi-arc measured from the meridian.
type placidusCusp struct {
	house    int
	fraction float64
	above    bool
}

var placidusCusps = []placidusCusp{
	{house: 11, fraction: 1.0 / 3, above: true},
	{house: 12, fraction: 2.0 / 3, above: true},
	{house: 2, fraction: 2.0 / 3, above: false},
	{house: 3, fraction: 1.0 / 3, above: false},
}

// Ascendant returns the ecliptic longitude rising on the eastern horizon.
func Ascendant(armc, latitude, obliquity float64) float64 {
	return Normalize(atan2d(
		cosd(armc),
		-(sind(armc)*cosd(obliquity) + tand(latitude)*sind(obliquity)),
	))
}

// Midheaven returns the ecliptic longitude culminating on the meridian.
func Midheaven(armc, obliquity float64) float64 {
	return Normalize(atan2d(sind(armc), cosd(armc)*cosd(obliquity)))
}

// Vertex returns the western intersection of the ecliptic with the prime
// vertical: the ascendant of the opposite meridian at the co-latitude.
func Vertex(armc, latitude, obliquity float64) float64 {
	coLat := 90 - latitude
	if latitude < 0 {
		coLat = -90 - latitude
	}
	return Ascendant(armc+180, coLat, obliquity)
}

// Placidus computes the angles and cusps of the Placidus house system for a
// local sidereal time (ARMC) in degrees, geographic latitude and obliquity.
//
// Inside the polar circles it returns ErrUndefinedHouseSystem; if a cusp does
// not settle within the iteration budget it returns ErrNonConvergence. No
// partial result accompanies an error.
func Placidus(lstDeg, latitude, obliquity float64) (model.HouseSystemResult, error) {
	if math.Abs(latitude) >= 90-obliquity {
		return model.HouseSystemResult{}, fmt.Errorf("%w: latitude %.4f is inside the polar circle (|lat| >= %.4f)",
			ErrUndefinedHouseSystem, latitude, 90-obliquity)
	}

	armc := Normalize(lstDeg)
	res := model.HouseSystemResult{
		ARMC:      armc,
		Ascendant: Ascendant(armc, latitude, obliquity),
		Midheaven: Midheaven(armc, obliquity),
		Vertex:    Vertex(armc, latitude, obliquity),
	}

	res.Cusps[0] = res.Ascendant
	res.Cusps[9] = res.Midheaven
	res.Cusps[3] = Normalize(res.Midheaven + 180)
	res.Cusps[6] = Normalize(res.Ascendant + 180)

	for _, c := range placidusCusps {
		lon, err := solveCusp(armc, latitude, obliquity, c, maxCuspIterations)
		if err != nil {
			return model.HouseSystemResult{}, err
		}
		res.Cusps[c.house-1] = lon
		res.Cusps[(c.house+5)%12] = Normalize(lon + 180)
	}
	return res, nil
}

// solveCusp finds the right ascension at which the cusp sits at its fraction
// of the semi-arc, by bisection on the offset from the meridian (above the
// horizon) or from the lower meridian (below it). The offset is bracketed in
// (0, 180): the residual is negative at 0 and positive at 180 whenever the
// semi-arcs exist. All state lives on the stack.
func solveCusp(armc, latitude, obliquity float64, c placidusCusp, maxIter int) (float64, error) {
	s := cuspSolver{
		armc:   armc,
		tanLat: tand(latitude),
		sinEps: sind(obliquity),
		cosEps: cosd(obliquity),
		cusp:   c,
	}

	lo, hi := 0.0, 180.0
	fLo, err := s.residual(lo)
	if err != nil {
		return 0, err
	}
	fHi, err := s.residual(hi)
	if err != nil {
		return 0, err
	}
	if !(fLo < 0 && fHi > 0) {
		return 0, fmt.Errorf("%w: cusp %d is not bracketed at latitude %.4f", ErrNonConvergence, c.house, latitude)
	}

	for i := 0; i < maxIter; i++ {
		mid := (lo + hi) / 2
		if hi-lo < cuspTolerance {
			return s.longitude(mid), nil
		}
		fMid, err := s.residual(mid)
		if err != nil {
			return 0, err
		}
		if fMid < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, fmt.Errorf("%w: cusp %d after %d iterations at latitude %.4f", ErrNonConvergence, c.house, maxIter, latitude)
}

type cuspSolver struct {
	armc                   float64
	tanLat, sinEps, cosEps float64
	cusp                   placidusCusp
}

// longitude maps an offset to the ecliptic longitude of the point with that
// right ascension.
func (s cuspSolver) longitude(offset float64) float64 {
	ra := s.armc + offset
	if !s.cusp.above {
		ra = s.armc + 180 - offset
	}
	return Normalize(atan2d(sind(ra), cosd(ra)*s.cosEps))
}

// residual is the offset minus the wanted fraction of the point's own
// diurnal or nocturnal semi-arc.
func (s cuspSolver) residual(offset float64) (float64, error) {
	x := s.tanLat * tand(asind(s.sinEps*sind(s.longitude(offset))))
	if math.IsNaN(x) || math.Abs(x) >= 1 {
		return 0, fmt.Errorf("%w: cusp %d has no semi-arc", ErrUndefinedHouseSystem, s.cusp.house)
	}
	ad := asind(x)
	if s.cusp.above {
		return offset - s.cusp.fraction*(90+ad), nil
	}
	return offset - s.cusp.fraction*(90-ad), nil
}
