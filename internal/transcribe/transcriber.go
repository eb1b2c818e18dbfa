// Package transcribe invokes the external image-to-text command for claimed
// jobs. The command contract is: <command> <source-image> <dest-text>, exit
// code zero on success with the transcript written to the destination path.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
)

// Transcriber runs the configured transcription command against a job's
// source image. It satisfies the worker Processor contract.
type Transcriber struct {
	command       string
	timeout       time.Duration
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// New creates a Transcriber from application config.
func New(cfg *config.Config, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		command: cfg.Transcriber.Command,
		timeout: time.Duration(cfg.Transcriber.Timeout) * time.Second,
		logger:  logging.NewComponentLogger(logger, "transcriber"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcriber) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// Process transcribes the job's source image into its destination text file.
// Failures are reported as errors so the queue can schedule a retry; the
// destination is only trusted when the command exits cleanly and the file
// exists afterwards.
func (t *Transcriber) Process(ctx context.Context, job *queue.Job) error {
	if job == nil {
		return fmt.Errorf("transcribe: job required")
	}

	if _, err := os.Stat(job.SourcePath); err != nil {
		return fmt.Errorf("transcribe: source %s: %w", job.SourcePath, err)
	}
	if err := os.MkdirAll(filepath.Dir(job.DestPath), 0o755); err != nil {
		return fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.logger.Debug("running transcription command",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("command", t.command),
		logging.String("source", job.SourcePath),
	)

	if err := t.run(runCtx, t.command, job.SourcePath, job.DestPath); err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("transcribe: command timed out after %s: %w", t.timeout, err)
		}
		return err
	}

	if _, err := os.Stat(job.DestPath); err != nil {
		return fmt.Errorf("transcribe: command succeeded but no output at %s: %w", job.DestPath, err)
	}
	return nil
}

func (t *Transcriber) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			return fmt.Errorf("%s: %w: %s", name, err, trimmed)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
