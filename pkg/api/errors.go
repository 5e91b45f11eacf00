package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrUnauthorized is returned when the backend answers 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidResponse is returned when a 2xx body fails validation.
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrMissingToken is returned before any request when the token is empty.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidBaseURL is returned by New for an unusable base URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// StatusError represents a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap maps 401 to ErrUnauthorized so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError describes why a response body was rejected.
type ValidationError struct {
	Endpoint string
	Reason   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
}

// Unwrap returns ErrInvalidResponse.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidResponse
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
