// Package domain contains domain errors used throughout the library.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	ErrArity        = errors.New("too few arguments")
	ErrNilParent    = errors.New("parent class is nil")
	ErrCyclicExtend = errors.New("class would extend itself")
	ErrSinkClosed   = errors.New("sink is closed")
	ErrSinkFull     = errors.New("sink buffer is full")
)

// ArityError is returned when a construction helper is called with too few
// arguments.
type ArityError struct {
	Op   string // Operation that failed
	Want int    // Minimum number of arguments
	Got  int    // Number of arguments supplied
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expects at least %d arguments, got %d", e.Op, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error {
	return ErrArity
}

// NewArityError creates a new ArityError.
func NewArityError(op string, want, got int) *ArityError {
	return &ArityError{
		Op:   op,
		Want: want,
		Got:  got,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
