package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/0xmhha/smartreadme/pkg/api"
	"github.com/0xmhha/smartreadme/pkg/artifact"
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/0xmhha/smartreadme/pkg/notice"
	"github.com/0xmhha/smartreadme/pkg/session"
)

// Controller owns the workflow state and performs its side effects.
// All methods are safe for concurrent use; at most one generation is in
// flight at any time.
type Controller struct {
	sessions session.Store
	backend  Generator
	sink     notice.Sink
	logger   logger.Logger

	mu      sync.Mutex
	state   State
	onReady []ReadyHook

	now  func() time.Time
	open func(path string) (io.ReadCloser, error)
}

// NewController creates a controller in PhaseIdle.
func NewController(sessions session.Store, backend Generator, sink notice.Sink, log logger.Logger) *Controller {
	return &Controller{
		sessions: sessions,
		backend:  backend,
		sink:     sink,
		logger:   log.With("component", "workflow"),
		now:      time.Now,
		open: func(path string) (io.ReadCloser, error) {
			// #nosec G304: path is chosen by the user
			return os.Open(path) // nolint:gosec
		},
	}
}

// State returns a snapshot of the current state. The snapshot is a deep
// copy; changing it has no effect on the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// OnReady registers a hook run after every successful generation. Hooks run
// on the submitting goroutine, outside the controller lock.
func (c *Controller) OnReady(hook ReadyHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = append(c.onReady, hook)
}

// Select chooses the archive for the next submission.
func (c *Controller) Select(u Upload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.state, Event{Kind: EventSelect, Upload: &u})
	if err != nil {
		return err
	}
	c.state = next
	c.logger.Debug("file selected", "name", u.Name)
	return nil
}

// Submit uploads the selected archive and waits for the backend to finish.
//
// Preconditions are checked before any request: a missing selection or an
// empty session yields a ValidationError and leaves the state untouched.
// A 401 from the backend clears the session and returns ErrSessionExpired;
// any other failure moves the workflow to PhaseFailed and returns an
// OperationError.
func (c *Controller) Submit(ctx context.Context) (*GenerationResult, error) {
	c.mu.Lock()

	if c.state.Phase == PhaseUploading {
		c.mu.Unlock()
		return nil, ErrAlreadyInProgress
	}

	if c.state.Selected == nil {
		c.mu.Unlock()
		c.sink.Notify(notice.Error(notice.MsgNoFileSelected))
		return nil, &ValidationError{Err: ErrNoFileSelected}
	}

	token, err := c.sessions.Read()
	if err != nil || token == "" {
		c.mu.Unlock()
		if err != nil {
			c.logger.Error("failed to read session", "error", err)
		}
		c.sink.Notify(notice.Error(notice.MsgNotAuthenticated))
		c.sink.RedirectToLogin()
		return nil, &ValidationError{Err: ErrNotAuthenticated}
	}

	next, err := Transition(c.state, Event{Kind: EventSubmit})
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = next
	upload := *next.Selected
	start := c.now()
	c.mu.Unlock()

	c.logger.Info("generation started", "file", upload.Name, "token", logger.Fingerprint(token))

	artifacts, genErr := c.generate(ctx, token, upload)
	end := c.now()

	if genErr != nil {
		return nil, c.fail(upload, genErr)
	}

	result := GenerationResult{
		ProjectName:     ProjectName(upload.Name),
		GeneratedAt:     end,
		DurationSeconds: roundDuration(end.Sub(start)),
		Artifacts:       artifacts,
	}

	c.mu.Lock()
	next, err = Transition(c.state, Event{Kind: EventSucceeded, Result: &result})
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = next
	hooks := append([]ReadyHook(nil), c.onReady...)
	stored := *next.clone().Result
	c.mu.Unlock()

	c.logger.Info("generation finished",
		"project", stored.ProjectName,
		"artifacts", len(stored.Artifacts),
		"duration_seconds", stored.DurationSeconds)
	c.sink.Notify(notice.Success(notice.MsgGenerated))

	for _, hook := range hooks {
		hook(upload, stored)
	}

	return &stored, nil
}

func (c *Controller) generate(ctx context.Context, token string, upload Upload) ([]artifact.Descriptor, error) {
	f, err := c.open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	return c.backend.Generate(ctx, token, upload.Name, f)
}

// fail applies a failed generation and returns the error for the caller.
func (c *Controller) fail(upload Upload, cause error) error {
	if api.IsUnauthorized(cause) {
		c.mu.Lock()
		if next, err := Transition(c.state, Event{Kind: EventUnauthorized}); err == nil {
			c.state = next
		}
		c.mu.Unlock()

		c.logger.Warn("session rejected by server", "file", upload.Name)
		if err := session.Expire(c.sessions, c.sink); err != nil {
			c.logger.Error("failed to clear session", "error", err)
		}
		return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
	}

	c.mu.Lock()
	if next, err := Transition(c.state, Event{Kind: EventFailed, Reason: cause.Error()}); err == nil {
		c.state = next
	}
	c.mu.Unlock()

	if errors.Is(cause, context.DeadlineExceeded) {
		c.logger.Error("generation timed out", "file", upload.Name)
	} else {
		c.logger.Error("generation failed", "file", upload.Name, "error", cause)
	}
	c.sink.Notify(notice.Error(notice.MsgGenerationFailed))

	return &OperationError{Op: "generate", Err: cause}
}

// Reset returns a Ready workflow to Idle, dropping the selection and the
// result.
func (c *Controller) Reset() error {
	c.mu.Lock()
	next, err := Transition(c.state, Event{Kind: EventReset})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()

	c.sink.Notify(notice.Info(notice.MsgReset))
	return nil
}
