package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the progress event surface. Handlers map these to
// HTTP status codes with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("module already completed")
	ErrAlreadyExists    = errors.New("already exists")
)

// ValidationError marks malformed or out-of-range input. No state is
// mutated when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
