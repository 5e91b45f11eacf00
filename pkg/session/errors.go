package session

import "errors"

// Common errors returned by session stores.
var (
	// ErrEmptyToken is returned when writing an empty token.
	ErrEmptyToken = errors.New("session token cannot be empty")

	// ErrStoreClosed is returned when using a closed store.
	ErrStoreClosed = errors.New("session store is closed")
)
