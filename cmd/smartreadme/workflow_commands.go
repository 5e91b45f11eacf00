package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/0xmhha/smartreadme/pkg/artifact"
	"github.com/0xmhha/smartreadme/pkg/display"
	"github.com/0xmhha/smartreadme/pkg/history"
	"github.com/0xmhha/smartreadme/pkg/watcher"
	"github.com/0xmhha/smartreadme/pkg/workflow"
	"github.com/spf13/cobra"
)

// generateCommand submits one archive.
type generateCommand struct {
	app       *app
	archive   string
	download  bool
	outputDir string
	format    string
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	c := &generateCommand{}

	cmd := &cobra.Command{
		Use:   "generate <archive>",
		Short: "Upload a project archive and generate its README",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c.app = a
			c.archive = args[0]
			return c.Execute(cmd)
		},
	}

	cmd.Flags().BoolVarP(&c.download, "download", "d", false, "download every artifact when done")
	cmd.Flags().StringVarP(&c.outputDir, "output-dir", "o", "", "directory for downloads (default from config)")
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "output format (table, json, simple)")
	return cmd
}

// Execute runs the generate command.
func (c *generateCommand) Execute(cmd *cobra.Command) error {
	if err := c.app.gate(); err != nil {
		return reported(err)
	}

	f, err := c.app.formatter(c.format)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(c.archive)
	if err != nil {
		return err
	}
	if info, statErr := os.Stat(path); statErr != nil || info.IsDir() {
		return fmt.Errorf("archive not found: %s", c.archive)
	}

	h, err := c.app.openHistory()
	if err != nil {
		c.app.log.Warn("history disabled", "error", err)
	} else {
		defer h.Close()
	}

	ctrl := c.app.controller(historyStore(h))
	if err := ctrl.Select(workflow.NewUpload(path)); err != nil {
		return err
	}

	result, err := ctrl.Submit(cmd.Context())
	if err != nil {
		return reported(err)
	}

	if err := f.FormatResult(c.app.stdout, *result); err != nil {
		return err
	}

	if c.download {
		return c.app.downloadAll(cmd.Context(), f, c.app.downloader(c.outputDir), *result)
	}
	return nil
}

// historyStore converts a possibly nil *SQLiteStore into a Store without
// producing a non-nil interface around a nil pointer.
func historyStore(h *history.SQLiteStore) history.Store {
	if h == nil {
		return nil
	}
	return h
}

// downloadCommand fetches artifacts by server path or from history.
type downloadCommand struct {
	app         *app
	paths       []string
	name        string
	fromHistory int64
	outputDir   string
	format      string
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	c := &downloadCommand{}

	cmd := &cobra.Command{
		Use:   "download [server-path...]",
		Short: "Download generated artifacts",
		Long: "Download artifacts by their server path, or every artifact of a\n" +
			"recorded generation with --from-history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && c.fromHistory == 0 {
				return errors.New("pass at least one server path or --from-history")
			}
			if c.name != "" && len(args) != 1 {
				return errors.New("--name requires exactly one server path")
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c.app = a
			c.paths = args
			return c.Execute(cmd)
		},
	}

	cmd.Flags().StringVar(&c.name, "name", "", "local file name for a single download")
	cmd.Flags().Int64Var(&c.fromHistory, "from-history", 0, "download every artifact of a history entry")
	cmd.Flags().StringVarP(&c.outputDir, "output-dir", "o", "", "directory for downloads (default from config)")
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "output format (table, json, simple)")
	return cmd
}

// Execute runs the download command.
func (c *downloadCommand) Execute(cmd *cobra.Command) error {
	if err := c.app.gate(); err != nil {
		return reported(err)
	}

	f, err := c.app.formatter(c.format)
	if err != nil {
		return err
	}

	var artifacts []artifact.Descriptor
	for _, p := range c.paths {
		artifacts = append(artifacts, artifact.Descriptor{DisplayName: c.name, ServerPath: p})
	}

	if c.fromHistory != 0 {
		h, err := c.app.openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		entry, err := h.Get(c.fromHistory)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, entry.Artifacts...)
	}

	return c.app.downloadAll(cmd.Context(), f, c.app.downloader(c.outputDir), workflow.GenerationResult{Artifacts: artifacts})
}

// watchCommand processes archives dropped into a directory.
type watchCommand struct {
	app       *app
	dir       string
	download  bool
	outputDir string
	format    string
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	c := &watchCommand{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Generate READMEs for archives dropped into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c.app = a
			if len(args) == 1 {
				c.dir = args[0]
			}
			if !cmd.Flags().Changed("download") {
				c.download = a.cfg.Watch.DownloadAll
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Execute(ctx, cmd)
		},
	}

	cmd.Flags().BoolVarP(&c.download, "download", "d", false, "download every artifact after each generation")
	cmd.Flags().StringVarP(&c.outputDir, "output-dir", "o", "", "directory for downloads (default from config)")
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "output format (table, json, simple)")
	return cmd
}

// Execute runs the watch loop until ctx is cancelled or the session is lost.
func (c *watchCommand) Execute(ctx context.Context, cmd *cobra.Command) error {
	if err := c.app.gate(); err != nil {
		return reported(err)
	}

	dir := c.dir
	if dir == "" {
		dir = c.app.cfg.Watch.Dir
	}
	if dir == "" {
		return errors.New("no watch directory: pass one or set watch.dir in the config")
	}

	f, err := c.app.formatter(c.format)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{
		DebounceInterval: c.app.cfg.Watch.DebounceInterval,
		Accept:           workflow.IsArchive,
	}, c.app.log)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx, dir); err != nil {
		return err
	}

	h, err := c.app.openHistory()
	if err != nil {
		c.app.log.Warn("history disabled", "error", err)
	} else {
		defer h.Close()
	}

	p := &archiveProcessor{
		app:       c.app,
		ctrl:      c.app.controller(historyStore(h)),
		formatter: f,
		download:  c.download,
		outputDir: c.outputDir,
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for archives (Ctrl+C to stop)\n", dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if err := p.process(ctx, ev.Path); err != nil {
				if stopsWatch(err) {
					return reported(err)
				}
				c.app.log.Warn("archive not processed", "path", ev.Path, "error", err)
			}

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			if errors.Is(err, watcher.ErrCircuitBreakerOpen) {
				return err
			}
			c.app.log.Warn("watcher error", "error", err)
		}
	}
}

// stopsWatch reports whether err means no further archive can succeed.
func stopsWatch(err error) bool {
	return errors.Is(err, workflow.ErrSessionExpired) || errors.Is(err, workflow.ErrNotAuthenticated)
}

// archiveProcessor runs one archive through the workflow.
type archiveProcessor struct {
	app       *app
	ctrl      *workflow.Controller
	formatter display.Formatter
	download  bool
	outputDir string
}

func (p *archiveProcessor) process(ctx context.Context, path string) error {
	if err := p.ctrl.Select(workflow.NewUpload(path)); err != nil {
		return err
	}

	result, err := p.ctrl.Submit(ctx)
	if err != nil {
		return err
	}

	if err := p.formatter.FormatResult(p.app.stdout, *result); err != nil {
		return err
	}

	if p.download {
		if err := p.app.downloadAll(ctx, p.formatter, p.app.downloader(p.outputDir), *result); err != nil {
			p.app.log.Warn("some downloads failed", "project", result.ProjectName, "error", err)
		}
	}

	return p.ctrl.Reset()
}
