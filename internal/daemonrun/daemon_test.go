package daemonrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Favour-nine/Gradr/internal/daemonrun"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/testsupport"
	"github.com/Favour-nine/Gradr/internal/worker"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		return nil
	}))

	daemon, err := daemonrun.New(cfg, store, logging.NewNop(), w)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !daemon.Running() {
		t.Fatal("daemon should report running")
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "gradrd.pid")
	data, err := os.ReadFile(pidPath)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Fatalf("pid file contains %q, want %d", data, os.Getpid())
	}

	if err := daemon.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}

	daemon.Stop()
	if daemon.Running() {
		t.Fatal("daemon should report stopped")
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed after Stop, stat err = %v", err)
	}
	daemon.Stop()
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	makeWorker := func() *worker.Worker {
		return worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
			return nil
		}))
	}

	first, err := daemonrun.New(cfg, store, logging.NewNop(), makeWorker())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemonrun.New(cfg, store, logging.NewNop(), makeWorker())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected lock to exclude second instance")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := daemonrun.New(nil, store, logging.NewNop(), nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
