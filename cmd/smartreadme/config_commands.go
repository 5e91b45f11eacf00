package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xmhha/smartreadme/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigResetCmd())
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			case "yaml", "":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(out, "# Current Configuration")
				fmt.Fprintln(out, "# Source:", configSource(opts))
				fmt.Fprintln(out)
				fmt.Fprint(out, string(data))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	return cmd
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			paths := []string{"./smartreadme.yaml", config.DefaultConfigPath()}

			fmt.Fprintln(out, "Configuration file search paths (in order of precedence):")
			fmt.Fprintln(out)
			for i, p := range paths {
				exists := "not found"
				if _, err := os.Stat(p); err == nil {
					exists = "found"
				}
				fmt.Fprintf(out, "  %d. %s [%s]\n", i+1, p, exists)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Active configuration:", configSource(opts))
			return nil
		},
	}
}

func newConfigResetCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Write the default configuration to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			outputPath := output
			if outputPath == "" {
				outputPath = config.DefaultConfigPath()
			}

			if _, err := os.Stat(outputPath); err == nil && !force {
				fmt.Fprintf(out, "Configuration file already exists at: %s\n", outputPath)
				fmt.Fprint(out, "Overwrite? [y/N]: ")
				if !confirmed(cmd.InOrStdin()) {
					fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			if err := config.Save(config.Default(), outputPath); err != nil {
				return err
			}

			fmt.Fprintf(out, "Configuration reset to defaults at: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	cmd.Flags().StringVar(&output, "output", "", "output path (default: ~/.config/smartreadme/config.yaml)")
	return cmd
}

// confirmed reads a y/yes answer. Anything else, including EOF, is no.
func confirmed(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// configSource returns the configuration file in effect.
func configSource(opts *rootOptions) string {
	if p := config.NewLoader(opts.configPath).Path(); p != "" {
		return p
	}
	return "defaults (no config file found)"
}
