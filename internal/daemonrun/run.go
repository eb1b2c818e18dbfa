package daemonrun

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/transcribe"
	"github.com/Favour-nine/Gradr/internal/worker"
)

// Run starts the daemon in the foreground and blocks until ctx is cancelled
// or a termination signal arrives. It owns the full wiring: directories,
// logger, store, transcriber, and worker.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}

	processor := transcribe.New(cfg, logger)
	w := worker.New(cfg, store, logger, processor)

	daemon, err := New(cfg, store, logger, w)
	if err != nil {
		store.Close()
		return err
	}
	defer daemon.Close()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := daemon.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("shutdown requested")
	daemon.Stop()
	return nil
}
