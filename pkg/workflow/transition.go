package workflow

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Transition applies e to s. It never mutates s. When e is not accepted in
// the current phase, s is returned unchanged together with an error.
func Transition(s State, e Event) (State, error) {
	switch e.Kind {
	case EventSelect:
		if s.Phase == PhaseUploading {
			return s, ErrAlreadyInProgress
		}
		next := s
		if e.Upload != nil {
			u := *e.Upload
			next.Selected = &u
		} else {
			next.Selected = nil
		}
		return next, nil

	case EventSubmit:
		if s.Phase == PhaseUploading {
			return s, ErrAlreadyInProgress
		}
		if s.Selected == nil {
			return s, ErrNoFileSelected
		}
		next := s
		next.Phase = PhaseUploading
		next.FailureReason = ""
		return next, nil

	case EventSucceeded:
		if s.Phase != PhaseUploading || e.Result == nil {
			return s, invalid(s, e)
		}
		r := *e.Result
		r.Artifacts = append(r.Artifacts[:0:0], e.Result.Artifacts...)
		next := s
		next.Phase = PhaseReady
		next.Result = &r
		return next, nil

	case EventUnauthorized:
		if s.Phase != PhaseUploading {
			return s, invalid(s, e)
		}
		next := s
		next.Phase = PhaseIdle
		if s.Result != nil {
			next.Phase = PhaseReady
		}
		return next, nil

	case EventFailed:
		if s.Phase != PhaseUploading {
			return s, invalid(s, e)
		}
		next := s
		next.Phase = PhaseFailed
		next.FailureReason = e.Reason
		return next, nil

	case EventReset:
		if s.Phase != PhaseReady {
			return s, invalid(s, e)
		}
		return State{Phase: PhaseIdle}, nil
	}

	return s, invalid(s, e)
}

func invalid(s State, e Event) error {
	return fmt.Errorf("%w: event %d in phase %s", ErrInvalidTransition, e.Kind, s.Phase)
}

var archiveExts = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// ProjectName derives the project name from an archive file name by removing
// a trailing archive extension, case-insensitively. A name that would become
// empty is returned as is.
func ProjectName(filename string) string {
	lower := strings.ToLower(filename)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) && len(filename) > len(ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// IsArchive reports whether filename carries a supported archive extension.
func IsArchive(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// roundDuration converts d to seconds rounded to one decimal, never negative.
func roundDuration(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(d.Seconds()*10) / 10
}
