package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/smartreadme/pkg/download"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/workflow"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

type jsonArtifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type jsonResult struct {
	ProjectName     string         `json:"project_name"`
	GeneratedAt     string         `json:"generated_at"`
	DurationSeconds float64        `json:"duration_seconds"`
	Artifacts       []jsonArtifact `json:"artifacts"`
}

type jsonOutcome struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatResult implements Formatter.FormatResult.
func (f *jsonFormatter) FormatResult(w io.Writer, result workflow.GenerationResult) error {
	out := jsonResult{
		ProjectName:     result.ProjectName,
		GeneratedAt:     result.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DurationSeconds: result.DurationSeconds,
		Artifacts:       make([]jsonArtifact, 0, len(result.Artifacts)),
	}
	for _, a := range result.Artifacts {
		out.Artifacts = append(out.Artifacts, jsonArtifact{
			Name: a.DisplayName,
			Path: a.ServerPath,
			Kind: string(a.Kind()),
		})
	}
	return f.encode(w, out)
}

// FormatHistory implements Formatter.FormatHistory.
func (f *jsonFormatter) FormatHistory(w io.Writer, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	return f.encode(w, entries)
}

// FormatDownloads implements Formatter.FormatDownloads.
func (f *jsonFormatter) FormatDownloads(w io.Writer, outcomes []download.Outcome) error {
	out := make([]jsonOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		jo := jsonOutcome{Name: o.Artifact.DisplayName, Path: o.Path}
		if o.Err != nil {
			jo.Error = o.Err.Error()
		}
		out = append(out, jo)
	}
	return f.encode(w, out)
}
