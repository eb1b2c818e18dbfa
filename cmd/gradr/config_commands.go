package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Favour-nine/Gradr/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point transcriber.command at your image-to-text tool.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s (exists: %s)\n\n", resolved, yesNo(exists))
			fmt.Fprintf(out, "[paths]\n")
			fmt.Fprintf(out, "scans_dir = %q\n", cfg.Paths.ScansDir)
			fmt.Fprintf(out, "transcripts_dir = %q\n", cfg.Paths.TranscriptsDir)
			fmt.Fprintf(out, "log_dir = %q\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "data_dir = %q\n\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "[queue]\n")
			fmt.Fprintf(out, "concurrency = %d\n", cfg.Queue.Concurrency)
			fmt.Fprintf(out, "poll_interval = %d\n", cfg.Queue.PollInterval)
			fmt.Fprintf(out, "max_attempts = %d\n", cfg.Queue.MaxAttempts)
			fmt.Fprintf(out, "backoff_base = %d\n", cfg.Queue.BackoffBase)
			fmt.Fprintf(out, "backoff_factor = %g\n", cfg.Queue.BackoffFactor)
			fmt.Fprintf(out, "backoff_jitter = %g\n", cfg.Queue.BackoffJitter)
			fmt.Fprintf(out, "stale_after = %d\n", cfg.Queue.StaleAfter)
			fmt.Fprintf(out, "retention_days = %d\n\n", cfg.Queue.RetentionDays)
			fmt.Fprintf(out, "[transcriber]\n")
			fmt.Fprintf(out, "command = %q\n", cfg.Transcriber.Command)
			fmt.Fprintf(out, "timeout = %d\n\n", cfg.Transcriber.Timeout)
			fmt.Fprintf(out, "[logging]\n")
			fmt.Fprintf(out, "format = %q\n", cfg.Logging.Format)
			fmt.Fprintf(out, "level = %q\n", cfg.Logging.Level)
			return nil
		},
	}
}
