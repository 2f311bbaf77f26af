package core

import "github.com/signalsfoundry/ephemref/model"

// QueryFlags selects optional outputs of a provider query.
type QueryFlags struct {
	IncludeSpeed bool
}

// EphemerisProvider supplies apparent geocentric ecliptic positions of date.
//
// Query takes a Julian Day in UT; providers that need TT apply ΔT themselves,
// so callers must never pass a TT value. Implementations must be safe for
// concurrent use.
type EphemerisProvider interface {
	// Name identifies the provider in logs and exported metadata.
	Name() string
	// Query returns the position of body at jdUT. Bodies the provider cannot
	// resolve yield an error wrapping ErrUnsupportedBody.
	Query(jdUT float64, body model.Body, flags QueryFlags) (model.BodyPosition, error)
}
