// Package daemonrun wires the long-running Gradr process: it opens the queue
// store, starts the worker loop, and enforces single-instance execution with
// a lock file.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/worker"
)

// Daemon coordinates the background worker and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store
	worker *worker.Worker

	lockPath string
	pidPath  string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, w *worker.Worker) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || w == nil {
		return nil, errors.New("daemon requires config, store, logger, and worker")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "gradrd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		worker:   w,
		lockPath: lockPath,
		pidPath:  filepath.Join(cfg.Paths.DataDir, "gradrd.pid"),
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the worker.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gradr daemon instance is already running")
	}

	if err := os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("write pid file: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.worker.Start(runCtx); err != nil {
		_ = os.Remove(d.pidPath)
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start worker: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("gradr daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.worker.Stop()
	if err := os.Remove(d.pidPath); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove pid file", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("gradr daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the path to the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
