package core

import "errors"

var (
	// ErrInvalidMoment is returned for malformed calendar input.
	ErrInvalidMoment = errors.New("invalid moment")
	// ErrUnsupportedBody is returned by providers that cannot resolve a body.
	ErrUnsupportedBody = errors.New("unsupported body")
	// ErrUndefinedHouseSystem is returned when Placidus cusps do not exist at
	// the given latitude, inside the polar circles.
	ErrUndefinedHouseSystem = errors.New("undefined house system")
	// ErrNonConvergence is returned when the cusp solver runs out of iterations.
	ErrNonConvergence = errors.New("cusp iteration did not converge")
)
