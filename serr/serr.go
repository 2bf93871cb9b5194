// Package serr defines the error kinds shared by every SciCxx engine.
package serr

import "errors"

// Sentinel error kinds. Engines wrap these with fmt.Errorf("%w: ...", Err...)
// so callers can still errors.Is against the kind while getting context.
var (
	// ErrInvalidArgument flags a wrong-sized buffer, a singular matrix
	// handed to an inversion, a negative tolerance, or a mis-ordered bracket.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConvergenceFailed flags an iteration cap reached without meeting
	// the requested tolerance.
	ErrConvergenceFailed = errors.New("convergence failed")
	// ErrDomainError flags a function evaluated outside its stated domain.
	ErrDomainError = errors.New("domain error")
	// ErrIncompatibleShape flags a matrix operation against mismatched
	// dimensions.
	ErrIncompatibleShape = errors.New("incompatible shape")
	// ErrInsufficientDerivatives flags a Householder-family call that
	// received fewer than order+1 derivatives of f.
	ErrInsufficientDerivatives = errors.New("insufficient derivatives")
	// ErrSingularSolve flags a Kepler minimum-T bisection called with a
	// contradictory bracket.
	ErrSingularSolve = errors.New("singular solve")
)
