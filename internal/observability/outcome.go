package observability

import (
	"errors"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/model"
)

// Outcome labels shared by the dataset counters and span events.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
	OutcomeUndefined   = "undefined"
	OutcomeNoConverge  = "nonconvergence"
	OutcomeInvalid     = "invalid"
)

// OutcomeOf classifies a provider or house-system error into an outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, core.ErrUnsupportedBody):
		return OutcomeUnsupported
	case errors.Is(err, core.ErrUndefinedHouseSystem):
		return OutcomeUndefined
	case errors.Is(err, core.ErrNonConvergence):
		return OutcomeNoConverge
	case errors.Is(err, model.ErrInvalidLocation), errors.Is(err, core.ErrInvalidMoment):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
