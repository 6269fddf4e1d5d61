package fin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAssumption marks input that is missing, zero where it must not
	// be, or outside its realistic domain.
	ErrInvalidAssumption = errors.New("invalid assumption")

	// ErrNonConvergence marks a solver with no defined answer (IRR with no sign
	// change, annuity with zero periods).
	ErrNonConvergence = errors.New("numeric non-convergence")
)

// AssumptionError names the offending field. It unwraps to ErrInvalidAssumption.
type AssumptionError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *AssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *AssumptionError) Unwrap() error { return ErrInvalidAssumption }

// Invalid builds an AssumptionError.
func Invalid(field string, value float64, reason string) error {
	return &AssumptionError{Field: field, Value: value, Reason: reason}
}

// NonNegative rejects v < 0.
func NonNegative(field string, v float64) error {
	if v < 0 {
		return Invalid(field, v, "must not be negative")
	}
	return nil
}

// Positive rejects v <= 0.
func Positive(field string, v float64) error {
	if v <= 0 {
		return Invalid(field, v, "must be greater than zero")
	}
	return nil
}

// Within rejects v outside [lo, hi].
func Within(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return Invalid(field, v, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
	return nil
}

// FirstError returns the first non-nil error, so validators can be written as
// a flat list of checks.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
