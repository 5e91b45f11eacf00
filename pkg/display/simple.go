package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/smartreadme/pkg/download"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/workflow"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatResult implements Formatter.FormatResult.
func (f *simpleFormatter) FormatResult(w io.Writer, result workflow.GenerationResult) error {
	if _, err := fmt.Fprintf(w, "%s: %d artifacts in %s\n",
		result.ProjectName,
		len(result.Artifacts),
		formatSeconds(result.DurationSeconds)); err != nil {
		return err
	}

	for _, a := range result.Artifacts {
		if _, err := fmt.Fprintf(w, "  [%s] %s\n", a.Kind().Label(), a.DisplayName); err != nil {
			return err
		}
	}
	return nil
}

// FormatHistory implements Formatter.FormatHistory.
func (f *simpleFormatter) FormatHistory(w io.Writer, entries []history.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "#%d %s - %s (%d artifacts, %s)\n",
			e.ID,
			e.ProjectName,
			formatTime(e.GeneratedAt),
			len(e.Artifacts),
			formatSeconds(e.DurationSeconds)); err != nil {
			return err
		}
	}
	return nil
}

// FormatDownloads implements Formatter.FormatDownloads.
func (f *simpleFormatter) FormatDownloads(w io.Writer, outcomes []download.Outcome) error {
	for _, o := range outcomes {
		var err error
		if o.Err != nil {
			_, err = fmt.Fprintf(w, "%s: failed (%v)\n", o.Artifact.DisplayName, o.Err)
		} else {
			_, err = fmt.Fprintf(w, "%s -> %s\n", o.Artifact.DisplayName, o.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
