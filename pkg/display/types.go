// Package display renders generation results, history and download
// outcomes for the terminal.
//
// It supports multiple output formats (table, JSON, simple text).
package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/smartreadme/pkg/download"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/workflow"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays output in aligned tables.
	FormatTable Format = "table"

	// FormatJSON displays output as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays one line per item.
	FormatSimple Format = "simple"
)

// ParseFormat validates a format name. Empty selects FormatTable.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatSimple:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or simple)", s)
	}
}

// Formatter renders workflow output.
type Formatter interface {
	// FormatResult renders a generation result with its artifacts.
	FormatResult(w io.Writer, result workflow.GenerationResult) error

	// FormatHistory renders recorded generations, newest first.
	FormatHistory(w io.Writer, entries []history.Entry) error

	// FormatDownloads renders the outcome of a batch download.
	FormatDownloads(w io.Writer, outcomes []download.Outcome) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// ShowPaths includes artifact server paths in tables.
	ShowPaths bool

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool
}
