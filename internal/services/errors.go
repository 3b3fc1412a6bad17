package services

import (
	"errors"

	"github.com/diewo77/timebill/internal/validation"
)

var (
	// ErrNotFound covers both a missing row and a row owned by another
	// user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness violation (duplicate invoice number or
	// username).
	ErrConflict = errors.New("already exists")
)

// ValidationError carries per-field violations back to the request boundary.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation failed" }

// AsValidation unwraps a *ValidationError if err is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
