package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/0xmhha/smartreadme/pkg/download"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/workflow"
)

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

// FormatResult implements Formatter.FormatResult.
func (f *tableFormatter) FormatResult(w io.Writer, result workflow.GenerationResult) error {
	if err := writeHeader(w, "Project: "+result.ProjectName, f.config.Compact); err != nil {
		return err
	}

	summary := [][]string{
		{"Generated", formatTime(result.GeneratedAt)},
		{"Duration", formatSeconds(result.DurationSeconds)},
		{"Artifacts", strconv.Itoa(len(result.Artifacts))},
	}
	if err := f.writeTable(w, []string{"Field", "Value"}, summary); err != nil {
		return err
	}

	if len(result.Artifacts) == 0 {
		return nil
	}

	header := []string{"#", "Type", "Name"}
	if f.config.ShowPaths {
		header = append(header, "Path")
	}
	rows := make([][]string, 0, len(result.Artifacts))
	for i, a := range result.Artifacts {
		row := []string{strconv.Itoa(i + 1), a.Kind().Label(), a.DisplayName}
		if f.config.ShowPaths {
			row = append(row, a.ServerPath)
		}
		rows = append(rows, row)
	}
	return f.writeTable(w, header, rows)
}

// FormatHistory implements Formatter.FormatHistory.
func (f *tableFormatter) FormatHistory(w io.Writer, entries []history.Entry) error {
	if err := writeHeader(w, "Generation History", f.config.Compact); err != nil {
		return err
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No generations recorded.")
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.ProjectName,
			formatTime(e.GeneratedAt),
			formatSeconds(e.DurationSeconds),
			strconv.Itoa(len(e.Artifacts)),
		})
	}
	return f.writeTable(w, []string{"ID", "Project", "Generated", "Duration", "Artifacts"}, rows)
}

// FormatDownloads implements Formatter.FormatDownloads.
func (f *tableFormatter) FormatDownloads(w io.Writer, outcomes []download.Outcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status, detail := "ok", o.Path
		if o.Err != nil {
			status, detail = "failed", o.Err.Error()
		}
		rows = append(rows, []string{o.Artifact.DisplayName, status, detail})
	}
	return f.writeTable(w, []string{"Artifact", "Status", "Saved To"}, rows)
}

// writeTable writes a formatted table. Columns are aligned by tabwriter,
// which measures cells in runes.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	padding := 2
	if f.config.Compact {
		padding = 1
	}
	tw := tabwriter.NewWriter(w, 0, 0, padding, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if !f.config.Compact {
		separator := make([]string, len(header))
		for i, h := range header {
			width := utf8.RuneCountInString(h)
			for _, row := range rows {
				if i < len(row) && utf8.RuneCountInString(row[i]) > width {
					width = utf8.RuneCountInString(row[i])
				}
			}
			separator[i] = strings.Repeat("-", width)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(separator, "\t")); err != nil {
			return fmt.Errorf("failed to write header separator: %w", err)
		}
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}
	return nil
}
