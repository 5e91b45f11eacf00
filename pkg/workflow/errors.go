package workflow

import (
	"errors"
	"fmt"
)

// Common errors returned by the workflow.
var (
	// ErrNoFileSelected is returned when submitting without a selection.
	ErrNoFileSelected = errors.New("no file selected")

	// ErrNotAuthenticated is returned when submitting without a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyInProgress is returned when a generation is already in flight.
	ErrAlreadyInProgress = errors.New("generation already in progress")

	// ErrSessionExpired is returned when the backend rejected the session.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidTransition is returned for an event the current phase does
	// not accept.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrLoginRequired is returned by AuthGate when no session exists.
	ErrLoginRequired = errors.New("login required")
)

// ValidationError is a local precondition failure. No request was issued.
type ValidationError struct {
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// OperationError is a failed backend operation other than an
// authentication failure.
type OperationError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}
