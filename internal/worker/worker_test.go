package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/testsupport"
	"github.com/Favour-nine/Gradr/internal/worker"
)

func TestTickMarksSuccessfulJobDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		return nil
	}))

	if !w.Tick(context.Background()) {
		t.Fatal("expected tick to run")
	}

	got, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != queue.StatusDone {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusDone)
	}
}

func TestTickRequeuesFailedJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		return errors.New("ocr backend unavailable")
	}))

	w.Tick(context.Background())

	got, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != queue.StatusQueued {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusQueued)
	}
	if got.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", got.Attempts)
	}
	if got.LastError != "ocr backend unavailable" {
		t.Fatalf("last error = %q", got.LastError)
	}
	if !got.AvailableAt.After(time.Now()) {
		t.Fatalf("expected job to be deferred, available at %s", got.AvailableAt)
	}
}

func TestJobFailsPermanentlyAfterMaxAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxAttempts(2))
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		return errors.New("always fails")
	}))

	ctx := context.Background()
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := store.RequeueNow(ctx, job.ID); err != nil {
			t.Fatalf("requeue: %v", err)
		}
		w.Tick(ctx)
	}

	got, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFailed)
	}
	if got.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", got.Attempts)
	}
}

func TestOneFailureDoesNotAffectSiblings(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(2))
	store := testsupport.MustOpenStore(t, cfg)
	bad := testsupport.NewJob(t, store, "math101", "/scans/bad.png", "/transcripts/bad.txt")
	good := testsupport.NewJob(t, store, "math101", "/scans/good.png", "/transcripts/good.txt")

	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		if job.ID == bad.ID {
			return errors.New("unreadable scan")
		}
		return nil
	}))

	w.Tick(context.Background())

	gotBad, err := store.GetJob(context.Background(), bad.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	gotGood, err := store.GetJob(context.Background(), good.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if gotBad.Status != queue.StatusQueued {
		t.Fatalf("failed job status = %s, want %s", gotBad.Status, queue.StatusQueued)
	}
	if gotGood.Status != queue.StatusDone {
		t.Fatalf("sibling status = %s, want %s", gotGood.Status, queue.StatusDone)
	}
}

func TestTickClaimsAtMostConcurrencyJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(2))
	store := testsupport.MustOpenStore(t, cfg)
	for i := 0; i < 5; i++ {
		testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")
	}

	var mu sync.Mutex
	processed := 0
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		mu.Lock()
		processed++
		mu.Unlock()
		return nil
	}))

	w.Tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if processed != 2 {
		t.Fatalf("processed %d jobs in one tick, want 2", processed)
	}
}

func TestTicksDoNotOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	entered := make(chan struct{})
	release := make(chan struct{})
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		close(entered)
		<-release
		return nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Tick(context.Background())
	}()

	<-entered
	if w.Tick(context.Background()) {
		t.Fatal("expected overlapping tick to be skipped")
	}
	close(release)
	<-done
}

func TestShutdownNeverAbandonsClaimedJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	entered := make(chan struct{})
	release := make(chan struct{})
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		close(entered)
		<-release
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Tick(ctx)
	}()

	<-entered
	cancel()
	close(release)
	<-done

	got, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status == queue.StatusProcessing {
		t.Fatal("job left in processing after shutdown")
	}
	if got.Status != queue.StatusQueued {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusQueued)
	}
	if got.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", got.Attempts)
	}
}

func TestShutdownRecordsSuccessDuringCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	entered := make(chan struct{})
	release := make(chan struct{})
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		close(entered)
		<-release
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Tick(ctx)
	}()

	<-entered
	cancel()
	close(release)
	<-done

	got, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != queue.StatusDone {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusDone)
	}
}

func TestStartAndStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "math101", "/scans/a.png", "/transcripts/a.txt")

	processed := make(chan int64, 1)
	w := worker.New(cfg, store, logging.NewNop(), worker.ProcessorFunc(func(ctx context.Context, job *queue.Job) error {
		select {
		case processed <- job.ID:
		default:
		}
		return nil
	}))

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}

	select {
	case id := <-processed:
		if id != job.ID {
			t.Fatalf("processed job %d, want %d", id, job.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job to be processed")
	}

	w.Stop()
	w.Stop()
}
