// Package download fetches generated artifacts and saves them locally.
//
// Each download is independent of the workflow state: it reads the session,
// asks the backend for the bytes behind an artifact's server path and
// writes them atomically into the output directory. Several downloads may
// run at once; a failure in one never affects another.
package download

import (
	"context"
	"io"

	"github.com/0xmhha/smartreadme/pkg/artifact"
)

// Fetcher retrieves artifact bytes from the backend.
type Fetcher interface {
	Download(ctx context.Context, token, serverPath string) (io.ReadCloser, error)
}

// Config contains downloader configuration.
type Config struct {
	// OutputDir receives saved files. Created on first use.
	OutputDir string
}

// Outcome is the result of downloading one artifact.
type Outcome struct {
	Artifact artifact.Descriptor

	// Path is the saved file location when Err is nil.
	Path string

	Err error
}
