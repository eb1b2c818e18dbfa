package queue

import (
	"context"
	"time"
)

// RewindUpdatedAt ages a job's liveness timestamp so tests can simulate a
// worker that claimed work and then vanished.
func (s *Store) RewindUpdatedAt(ctx context.Context, id int64, to time.Time) error {
	_, err := s.execWithRetry(ctx, `UPDATE jobs SET updated_at = ? WHERE id = ?`, formatTime(to), id)
	return err
}

// RewindAvailableAt pulls a job's availability into the past so retry waits do
// not slow tests down.
func (s *Store) RewindAvailableAt(ctx context.Context, id int64, to time.Time) error {
	_, err := s.execWithRetry(ctx, `UPDATE jobs SET available_at = ? WHERE id = ?`, formatTime(to), id)
	return err
}
