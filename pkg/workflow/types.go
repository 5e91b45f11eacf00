// Package workflow drives the upload, generate and download cycle.
//
// The state model is a small machine with four phases (Idle, Uploading,
// Ready, Failed). Transition is a pure function over an immutable State;
// Controller owns the current State, performs the side effects (reading the
// session, calling the backend, emitting notices) and feeds the outcomes back
// through Transition.
//
// Example usage:
//
//	ctrl := workflow.NewController(sessions, client, sink, log)
//	if err := ctrl.Select(workflow.NewUpload("./myproj.zip")); err != nil {
//	    return err
//	}
//	result, err := ctrl.Submit(ctx)
package workflow

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/0xmhha/smartreadme/pkg/artifact"
)

// Phase is the coarse workflow status.
type Phase int

// Workflow phases.
const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseReady
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Upload references the local archive chosen for submission.
type Upload struct {
	// Path is the file location on disk.
	Path string

	// Name is the file name sent to the backend and used to derive the
	// project name.
	Name string
}

// NewUpload builds an Upload whose Name is the base name of path.
func NewUpload(path string) Upload {
	return Upload{Path: path, Name: filepath.Base(path)}
}

// GenerationResult is the outcome of one successful generation.
type GenerationResult struct {
	ProjectName     string                `json:"project_name"`
	GeneratedAt     time.Time             `json:"generated_at"`
	DurationSeconds float64               `json:"duration_seconds"`
	Artifacts       []artifact.Descriptor `json:"artifacts"`
}

// State is a snapshot of the workflow. Values are never mutated in place;
// Transition always returns a new State.
type State struct {
	Phase Phase

	// Selected is the chosen upload, or nil.
	Selected *Upload

	// Result is the latest successful generation, or nil. It survives
	// failures and is only dropped by Reset or replaced by a new success.
	Result *GenerationResult

	// FailureReason describes the last failed generation while in
	// PhaseFailed.
	FailureReason string
}

// clone returns a copy of s that shares no memory with it.
func (s State) clone() State {
	if s.Selected != nil {
		u := *s.Selected
		s.Selected = &u
	}
	if s.Result != nil {
		r := *s.Result
		r.Artifacts = append([]artifact.Descriptor(nil), s.Result.Artifacts...)
		s.Result = &r
	}
	return s
}

// EventKind identifies a workflow event.
type EventKind int

// Workflow events.
const (
	EventSelect EventKind = iota
	EventSubmit
	EventSucceeded
	EventUnauthorized
	EventFailed
	EventReset
)

// Event is an input to Transition.
type Event struct {
	Kind EventKind

	// Upload is set for EventSelect.
	Upload *Upload

	// Result is set for EventSucceeded.
	Result *GenerationResult

	// Reason is set for EventFailed.
	Reason string
}

// Generator is the backend capability the controller needs.
type Generator interface {
	Generate(ctx context.Context, token, filename string, content io.Reader) ([]artifact.Descriptor, error)
}

// ReadyHook observes successful generations.
type ReadyHook func(upload Upload, result GenerationResult)
