package history

import "errors"

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("history entry not found")
