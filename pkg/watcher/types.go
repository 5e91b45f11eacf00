// Package watcher watches a drop folder for project archives.
//
// It uses fsnotify on a single directory and reports an archive once it
// has stopped changing for the debounce interval, so a file that is still
// being copied is not picked up half written. Only names accepted by the
// configured filter are reported.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 500 * time.Millisecond,
//	    Accept:           workflow.IsArchive,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, "~/Projects/drop"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("archive %s: %s\n", event.Path, event.Op)
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes what happened to an archive.
type Op uint32

// Archive operations.
const (
	OpCreate Op = 1 << iota // Created or moved into the folder
	OpWrite                 // Rewritten in place
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Event reports an archive that has settled.
type Event struct {
	// Path is the absolute path to the archive.
	Path string

	// Op is the first operation seen for the path within the debounce
	// window, so a fresh copy reports OpCreate even though writes follow.
	Op Op

	// Timestamp is when the event was emitted.
	Timestamp time.Time
}

// Watcher monitors one directory.
type Watcher interface {
	// Start begins watching dir. It returns once the watch is established;
	// events are delivered until ctx is cancelled, Stop or Close is called.
	Start(ctx context.Context, dir string) error

	// Stop halts event processing.
	Stop() error

	// Events returns settled archive events. Closed by Close.
	Events() <-chan Event

	// Errors returns non-fatal watcher errors. Closed by Close.
	Errors() <-chan error

	// Close releases all resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is how long a path must stay quiet before it is
	// reported. Default: 500ms.
	DebounceInterval time.Duration

	// Accept filters file names (base names). Nil accepts everything.
	Accept func(name string) bool

	// CircuitBreakerThreshold is the number of fsnotify errors after which
	// ErrCircuitBreakerOpen is reported instead of the error itself.
	// Default: 5.
	CircuitBreakerThreshold int
}
