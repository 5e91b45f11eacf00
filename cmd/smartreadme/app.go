package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xmhha/smartreadme/pkg/api"
	"github.com/0xmhha/smartreadme/pkg/config"
	"github.com/0xmhha/smartreadme/pkg/display"
	"github.com/0xmhha/smartreadme/pkg/download"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/0xmhha/smartreadme/pkg/notice"
	"github.com/0xmhha/smartreadme/pkg/session"
	"github.com/0xmhha/smartreadme/pkg/workflow"
	"github.com/spf13/cobra"
)

// app bundles the components a command needs.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	sessions session.Store
	client   *api.Client
	sink     notice.Sink

	stdin  io.Reader
	stdout io.Writer
}

// newApp loads configuration and opens the session store. The caller must
// Close the returned app.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	sessions, err := session.Open(session.Config{DBPath: cfg.Storage.DBPath}, log)
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client, err := api.New(api.Config{
		BaseURL:         cfg.API.BaseURL,
		LoginTimeout:    cfg.API.LoginTimeout,
		GenerateTimeout: cfg.API.GenerateTimeout,
		DownloadTimeout: cfg.API.DownloadTimeout,
	}, log)
	if err != nil {
		_ = sessions.Close()
		_ = log.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		client:   client,
		sink:     notice.NewWriter(cmd.ErrOrStderr()),
		stdin:    cmd.InOrStdin(),
		stdout:   cmd.OutOrStdout(),
	}, nil
}

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.NewLoader(opts.configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.apiURL == "" && opts.logLevel == "" {
		return cfg, nil
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(opts.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// Close releases resources. The logger is closed last.
func (a *app) Close() {
	if err := a.sessions.Close(); err != nil {
		a.log.Error("failed to close session store", "error", err)
	}
	if err := a.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log output: %v\n", err)
	}
}

// gate runs the AuthGate.
func (a *app) gate() error {
	return workflow.NewAuthGate(a.sessions, a.sink, a.log).Check()
}

// formatter returns the formatter for format, falling back to the
// configured default.
func (a *app) formatter(format string) (display.Formatter, error) {
	if format == "" {
		format = a.cfg.Display.Format
	}
	f, err := display.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return display.New(display.Config{
		Format:    f,
		ShowPaths: a.cfg.Display.ShowPaths,
		Compact:   a.cfg.Display.Compact,
	}), nil
}

// downloader returns a Downloader writing to outputDir, or the configured
// directory when outputDir is empty.
func (a *app) downloader(outputDir string) *download.Downloader {
	if outputDir == "" {
		outputDir = a.cfg.Download.OutputDir
	}
	return download.New(download.Config{OutputDir: outputDir}, a.sessions, a.client, a.sink, a.log)
}

// openHistory opens the history ledger.
func (a *app) openHistory() (*history.SQLiteStore, error) {
	h, err := history.Open(a.cfg.Storage.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return h, nil
}

// controller builds a workflow controller that records successes in h.
// A nil h disables recording.
func (a *app) controller(h history.Store) *workflow.Controller {
	ctrl := workflow.NewController(a.sessions, a.client, a.sink, a.log)
	if h != nil {
		ctrl.OnReady(func(u workflow.Upload, r workflow.GenerationResult) {
			_, err := h.Record(history.Entry{
				ProjectName:     r.ProjectName,
				ArchivePath:     u.Path,
				GeneratedAt:     r.GeneratedAt,
				DurationSeconds: r.DurationSeconds,
				Artifacts:       r.Artifacts,
			})
			if err != nil {
				a.log.Warn("failed to record history", "project", r.ProjectName, "error", err)
			}
		})
	}
	return ctrl
}

// downloadAll fetches every artifact and prints the outcomes. It fails if
// any single download failed.
func (a *app) downloadAll(ctx context.Context, f display.Formatter, d *download.Downloader, r workflow.GenerationResult) error {
	outcomes := d.All(ctx, r.Artifacts)
	if err := f.FormatDownloads(a.stdout, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return reported(fmt.Errorf("%d of %d downloads failed", failed, len(outcomes)))
	}
	return nil
}
