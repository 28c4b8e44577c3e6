package model

import "errors"

// Common errors used across the application
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// Character errors
	ErrCharacterNotFound = errors.New("character not found")
	ErrMaxLevel          = errors.New("character is already at max level")
	ErrVersionConflict   = errors.New("character was modified concurrently")
)

// InvalidInputError describes which input was rejected. It matches ErrInvalidInput
// under errors.Is.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// Is reports whether target is ErrInvalidInput
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInput creates an InvalidInputError for a field
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
