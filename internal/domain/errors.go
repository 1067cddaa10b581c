package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks a score or weight outside its declared range.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidWeights marks a weight configuration that cannot be used.
	ErrInvalidWeights = errors.New("invalid weight configuration")
)

// ValidationError describes a single field that failed ingestion checks.
type ValidationError struct {
	Record string // record identity, e.g. output ID
	Field  string
	Value  float64
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("%s: %s.%s=%v: %s", e.kind, e.Record, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: %s=%v: %s", e.kind, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *ValidationError) Unwrap() error {
	return e.kind
}

// NewValidationError builds a ValidationError of the given kind.
// A nil kind defaults to ErrMalformedInput.
func NewValidationError(kind error, record, field string, value float64, reason string) *ValidationError {
	if kind == nil {
		kind = ErrMalformedInput
	}
	return &ValidationError{Record: record, Field: field, Value: value, Reason: reason, kind: kind}
}

// checkUnit returns a ValidationError when v is outside [0,1].
func checkUnit(record, field string, v float64) error {
	return checkRange(record, field, v, 0, 1)
}

func checkRange(record, field string, v, lo, hi float64) error {
	if v != v || v < lo || v > hi { // v != v catches NaN
		return NewValidationError(ErrMalformedInput, record, field, v,
			fmt.Sprintf("must be within [%g, %g]", lo, hi))
	}
	return nil
}

// CheckRange validates a collaborator-supplied number against its range.
func CheckRange(field string, v, lo, hi float64) error {
	return checkRange("", field, v, lo, hi)
}
