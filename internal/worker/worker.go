package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
)

// Worker polls the queue store and dispatches claimed jobs to a Processor.
type Worker struct {
	store        *queue.Store
	logger       *slog.Logger
	processor    Processor
	pollInterval time.Duration
	concurrency  int
	retry        queue.RetryPolicy
	staleAfter   time.Duration

	// tickSlot holds one token; a tick that cannot take it is skipped so
	// dispatch rounds never overlap.
	tickSlot chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a Worker from application config.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, processor Processor) *Worker {
	w := &Worker{
		store:        store,
		logger:       logging.NewComponentLogger(logger, "worker"),
		processor:    processor,
		pollInterval: time.Duration(cfg.Queue.PollInterval) * time.Second,
		concurrency:  cfg.Queue.Concurrency,
		staleAfter:   time.Duration(cfg.Queue.StaleAfter) * time.Second,
		retry: queue.RetryPolicy{
			MaxAttempts: cfg.Queue.MaxAttempts,
			Backoff: queue.Backoff{
				Base:   time.Duration(cfg.Queue.BackoffBase) * time.Second,
				Factor: cfg.Queue.BackoffFactor,
				Jitter: cfg.Queue.BackoffJitter,
			},
		},
		tickSlot: make(chan struct{}, 1),
	}
	w.tickSlot <- struct{}{}
	return w
}

// Start begins background processing. It returns once the polling goroutine
// is running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}
	if w.processor == nil {
		return errors.New("worker processor not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.run(runCtx)

	return nil
}

// Stop terminates background processing and waits for in-flight jobs to
// finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	w.logger.Info("worker started",
		logging.Int("concurrency", w.concurrency),
		logging.Duration("poll_interval", w.pollInterval),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one dispatch round: claim up to the concurrency limit, process
// each claimed job in its own goroutine, and wait for all of them. It returns
// false when a previous round is still in flight and the tick was skipped.
func (w *Worker) Tick(ctx context.Context) bool {
	select {
	case <-w.tickSlot:
	default:
		w.logger.Debug("tick skipped; previous round still dispatching")
		return false
	}
	defer func() { w.tickSlot <- struct{}{} }()

	jobs, err := w.store.Claim(ctx, w.concurrency, w.staleAfter)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Error("claim failed", logging.Error(err))
		}
		return true
	}
	if len(jobs) == 0 {
		return true
	}

	var group sync.WaitGroup
	group.Add(len(jobs))
	for _, job := range jobs {
		go func(job *queue.Job) {
			defer group.Done()
			w.dispatch(ctx, job)
		}(job)
	}
	group.Wait()
	return true
}

func (w *Worker) dispatch(ctx context.Context, job *queue.Job) {
	logger := w.logger.With(logging.Args(
		logging.String(logging.FieldRequestID, uuid.NewString()),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldFolder, job.Folder),
	)...)

	logger.Info("processing job", logging.Int("attempt", job.Attempts+1))
	started := time.Now()

	// Outcome writes run on a context detached from shutdown cancellation:
	// a claimed job must always reach done, queued, or failed even when Stop
	// interrupts its Process call, otherwise it sits in processing until the
	// staleness threshold reclaims it.
	recordCtx := context.WithoutCancel(ctx)

	err := w.processor.Process(ctx, job)
	if err == nil {
		if markErr := w.store.MarkDone(recordCtx, job.ID); markErr != nil {
			logger.Error("record success failed", logging.Error(markErr))
			return
		}
		logger.Info("job done", logging.Duration("elapsed", time.Since(started)))
		return
	}

	status, markErr := w.store.MarkFailed(recordCtx, job.ID, err.Error(), w.retry)
	if markErr != nil {
		logger.Error("record failure failed",
			logging.Error(markErr),
			logging.String("process_error", err.Error()),
		)
		return
	}

	switch status {
	case queue.StatusQueued:
		logger.Warn("job failed; will retry", logging.Error(err))
	case queue.StatusFailed:
		logger.Error("job failed permanently", logging.Error(err))
	}
}
