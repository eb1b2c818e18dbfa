package testsupport

import (
	"context"
	"testing"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, folder, sourcePath, destPath string) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), folder, sourcePath, destPath, 0, 0)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}
