package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/ingest"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var priority int

	cmd := &cobra.Command{
		Use:   "add [flags] <image-or-directory>...",
		Short: "Ingest scan images and enqueue transcription jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(folder) == "" {
				return errors.New("--folder is required")
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				ing := ingest.New(cfg, store, logging.NewNop())
				out := cmd.OutOrStdout()

				var jobs []*queue.Job
				for _, arg := range args {
					info, err := os.Stat(arg)
					if err != nil {
						return fmt.Errorf("stat %s: %w", arg, err)
					}
					if info.IsDir() {
						dirJobs, err := ing.IngestDir(cmd.Context(), folder, arg, priority)
						jobs = append(jobs, dirJobs...)
						if err != nil {
							return err
						}
						continue
					}
					job, err := ing.IngestFile(cmd.Context(), folder, arg, priority)
					if err != nil {
						return err
					}
					jobs = append(jobs, job)
				}

				if len(jobs) == 0 {
					fmt.Fprintln(out, "No images found to ingest")
					return nil
				}
				for _, job := range jobs {
					fmt.Fprintf(out, "Queued job %d: %s\n", job.ID, job.SourcePath)
				}
				fmt.Fprintf(out, "Ingested %d scan(s) into folder %q\n", len(jobs), folder)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Logical folder the scans belong to (required)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Job priority; higher runs first")
	return cmd
}
