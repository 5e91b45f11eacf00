package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xmhha/smartreadme/pkg/api"
	"github.com/0xmhha/smartreadme/pkg/artifact"
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/0xmhha/smartreadme/pkg/notice"
	"github.com/0xmhha/smartreadme/pkg/session"
)

const fallbackName = "download"

// Downloader saves artifacts to the local filesystem.
type Downloader struct {
	config   Config
	sessions session.Store
	fetcher  Fetcher
	sink     notice.Sink
	logger   logger.Logger
}

// New creates a Downloader.
func New(cfg Config, sessions session.Store, fetcher Fetcher, sink notice.Sink, log logger.Logger) *Downloader {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &Downloader{
		config:   cfg,
		sessions: sessions,
		fetcher:  fetcher,
		sink:     sink,
		logger:   log.With("component", "download"),
	}
}

// authSignals delivers at most one session notice per batch: either the
// missing-session notice or the expiry path, whichever comes first.
type authSignals struct {
	once sync.Once
}

// Download fetches a and returns the path it was saved to.
func (d *Downloader) Download(ctx context.Context, a artifact.Descriptor) (string, error) {
	return d.download(ctx, a, &authSignals{})
}

func (d *Downloader) download(ctx context.Context, a artifact.Descriptor, signals *authSignals) (string, error) {
	token, err := d.sessions.Read()
	if err != nil {
		d.logger.Error("failed to read session", "error", err)
	}
	if token == "" {
		signals.once.Do(func() {
			d.sink.Notify(notice.Error(notice.MsgDownloadNoSession))
		})
		return "", ErrNoSession
	}

	dest, err := d.fetch(ctx, token, a)
	if err != nil {
		if api.IsUnauthorized(err) {
			d.logger.Warn("session rejected by server", "artifact", a.DisplayName)
			signals.once.Do(func() {
				if clearErr := session.Expire(d.sessions, d.sink); clearErr != nil {
					d.logger.Error("failed to clear session", "error", clearErr)
				}
			})
		} else {
			d.logger.Error("download failed", "artifact", a.DisplayName, "error", err)
			d.sink.Notify(notice.Error(notice.MsgDownloadFailed))
		}
		return "", fmt.Errorf("download %q: %w", a.DisplayName, err)
	}

	d.logger.Info("download finished", "artifact", a.DisplayName, "path", dest)
	d.sink.Notify(notice.Success(notice.MsgDownloaded))
	return dest, nil
}

// All downloads every artifact concurrently. Outcomes are returned in the
// order of artifacts. A rejected or missing session is reported to the user
// once for the whole batch.
func (d *Downloader) All(ctx context.Context, artifacts []artifact.Descriptor) []Outcome {
	outcomes := make([]Outcome, len(artifacts))
	signals := &authSignals{}

	var wg sync.WaitGroup
	for i, a := range artifacts {
		wg.Add(1)
		go func(i int, a artifact.Descriptor) {
			defer wg.Done()
			path, err := d.download(ctx, a, signals)
			outcomes[i] = Outcome{Artifact: a, Path: path, Err: err}
		}(i, a)
	}
	wg.Wait()

	return outcomes
}

func (d *Downloader) fetch(ctx context.Context, token string, a artifact.Descriptor) (string, error) {
	body, err := d.fetcher.Download(ctx, token, a.ServerPath)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return writeAtomic(d.config.OutputDir, SaveName(a), body)
}

// SaveName picks the local file name for a: the base of the display name,
// else the last segment of the server path, else "download".
func SaveName(a artifact.Descriptor) string {
	if name := lastSegment(a.DisplayName); name != "" {
		return name
	}
	if name := lastSegment(a.ServerPath); name != "" {
		return name
	}
	return fallbackName
}

func lastSegment(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	p = strings.TrimSpace(p)
	if p == "." || p == ".." {
		return ""
	}
	return p
}

// writeAtomic streams r into dir/name through a temporary file so readers
// never observe a partial download.
func writeAtomic(dir, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	return dest, nil
}
