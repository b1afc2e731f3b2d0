package services

import (
	"errors"
	"fmt"
)

// Error variables
var (
	// ErrUserNotFound is returned when an operation references a user
	// that does not exist.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrUsernameTaken is returned by RegisterOrLogin under the
	// "conflict" policy when the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidInput is the sentinel all validation failures unwrap to.
	// Use errors.Is(err, ErrInvalidInput) to classify, errors.As with
	// *ValidationError to get the failed rule.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError identifies which input rule was violated.
type ValidationError struct {
	Field  string // The field that failed validation
	Reason string // Human-readable reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
