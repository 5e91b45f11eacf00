package main

import (
	"fmt"
	"strconv"

	"github.com/0xmhha/smartreadme/pkg/workflow"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past generations",
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format (table, json, simple)")

	cmd.AddCommand(newHistoryListCmd(opts, &format))
	cmd.AddCommand(newHistoryShowCmd(opts, &format))
	cmd.AddCommand(newHistoryDeleteCmd(opts))
	return cmd
}

func newHistoryListCmd(opts *rootOptions, format *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.formatter(*format)
			if err != nil {
				return err
			}

			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.List(limit)
			if err != nil {
				return err
			}
			return f.FormatHistory(a.stdout, entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	return cmd
}

func newHistoryShowCmd(opts *rootOptions, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one generation and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.formatter(*format)
			if err != nil {
				return err
			}

			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			entry, err := h.Get(id)
			if err != nil {
				return err
			}

			return f.FormatResult(a.stdout, workflow.GenerationResult{
				ProjectName:     entry.ProjectName,
				GeneratedAt:     entry.GeneratedAt,
				DurationSeconds: entry.DurationSeconds,
				Artifacts:       entry.Artifacts,
			})
		},
	}
}

func newHistoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			if err := h.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted history entry %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
