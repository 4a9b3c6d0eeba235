package models

import "errors"

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError rejects a run before any conversion starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
