package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// watcher implements Watcher using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan Event
	errors chan error

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// done is closed before the output channels so that blocked senders
	// can give up.
	done     chan struct{}
	doneOnce sync.Once

	debounceMu sync.Mutex
	pending    map[string]*pendingEvent

	failures atomic.Int32
}

type pendingEvent struct {
	timer *time.Timer
	op    Op
}

// New creates a drop-folder watcher.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 500 * time.Millisecond
	}
	if cfg.CircuitBreakerThreshold == 0 {
		cfg.CircuitBreakerThreshold = 5
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:      fsw,
		logger:   log.With("component", "watcher"),
		config:   cfg,
		events:   make(chan Event, 16),
		errors:   make(chan error, 10),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		pending:  make(map[string]*pendingEvent),
	}

	w.logger.Debug("archive watcher created", "debounce_interval", cfg.DebounceInterval)
	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.running {
		return ErrAlreadyStarted
	}

	expanded := expandHome(dir)
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidPath, expanded)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", expanded, err)
	}

	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.running = true
	w.logger.Info("watching for archives", "dir", abs)

	go w.processEvents(ctx, w.stopChan)
	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	close(w.stopChan)
	w.stopChan = make(chan struct{})
	w.running = false

	w.logger.Info("watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.doneOnce.Do(func() { close(w.done) })

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	w.debounceMu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = nil
	w.debounceMu.Unlock()

	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("watcher closed")
	return nil
}

func (w *watcher) processEvents(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-stop:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent filters an fsnotify event and schedules it for emission.
func (w *watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if w.config.Accept != nil && !w.config.Accept(name) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	default:
		// Remove, Rename (the old name) and Chmod never produce a new
		// archive to process.
		return
	}

	w.debounce(event.Name, op)
}

// debounce restarts the quiet period for path. The first op in a window
// is the one reported.
func (w *watcher) debounce(path string, op Op) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.pending == nil {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.timer.Reset(w.config.DebounceInterval)
		return
	}

	w.pending[path] = &pendingEvent{
		op: op,
		timer: time.AfterFunc(w.config.DebounceInterval, func() {
			w.flush(path)
		}),
	}
}

// flush emits the settled event for path if the file is still there.
func (w *watcher) flush(path string) {
	w.debounceMu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.debounceMu.Unlock()
	if !ok {
		return
	}

	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		w.logger.Debug("archive vanished before settling", "path", path)
		return
	}

	w.send(Event{Path: path, Op: p.op, Timestamp: time.Now()})
}

func (w *watcher) send(ev Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// handleError forwards fsnotify errors until the breaker threshold is hit.
func (w *watcher) handleError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	count := int(w.failures.Add(1))
	w.logger.Error("fsnotify error", "error", err, "failure_count", count)

	out := err
	if count >= w.config.CircuitBreakerThreshold {
		w.logger.Error("circuit breaker opened", "threshold", w.config.CircuitBreakerThreshold)
		out = ErrCircuitBreakerOpen
	}

	select {
	case w.errors <- out:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
