package fault

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them via errors.Is.
var (
	// ErrUnfitted is returned when parameters are requested before Fit.
	ErrUnfitted = errors.New("fault shall be fitted before computing parameters")
	// ErrDegenerateInput covers too few points for a fit or a hull.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrNumerical covers solver failures and non-finite coefficients.
	ErrNumerical = errors.New("numerical failure")
)

// DegenerateInputError reports an input that cannot support the requested
// operation, e.g. two points for a plane fit or collinear hull points.
type DegenerateInputError struct {
	Op     string // operation that rejected the input
	Points int    // points supplied
	Need   int    // points required, 0 if not a count problem
	Reason string
}

func (e *DegenerateInputError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("%s: degenerate input: %d points, need at least %d", e.Op, e.Points, e.Need)
	}
	return fmt.Sprintf("%s: degenerate input: %s (%d points)", e.Op, e.Reason, e.Points)
}

// Is makes errors.Is(err, ErrDegenerateInput) hold.
func (e *DegenerateInputError) Is(target error) bool {
	return target == ErrDegenerateInput
}

// NumericalError reports a least-squares solve that failed or produced
// non-finite coefficients.
type NumericalError struct {
	Op     string
	Reason string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s: numerical failure: %s", e.Op, e.Reason)
}

// Is makes errors.Is(err, ErrNumerical) hold.
func (e *NumericalError) Is(target error) bool {
	return target == ErrNumerical
}
