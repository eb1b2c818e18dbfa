package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MarkDone transitions a processing job to done and clears its error history.
// Reporting completion for a job no longer in processing returns
// ErrNotProcessing (or ErrNotFound when the job does not exist).
func (s *Store) MarkDone(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, last_error = NULL, updated_at = ? WHERE id = ? AND status = ?`,
		StatusDone,
		formatTime(now),
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark job %d done: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark done rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionConflict(ctx, id)
	}
	return nil
}

// MarkFailed records a processing failure. The attempt count is incremented;
// while it remains below the policy's budget the job returns to queued with
// its next availability pushed out by the backoff schedule, otherwise it goes
// terminal failed. The whole transition runs in one transaction. The resulting
// status is returned.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string, policy RetryPolicy) (Status, error) {
	ctx = ensureContext(ctx)
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result Status
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin failure tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var (
			attempts  int
			statusStr string
		)
		row := tx.QueryRowContext(ctx, `SELECT attempts, status FROM jobs WHERE id = ?`, id)
		if err := row.Scan(&attempts, &statusStr); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("job %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("read job %d for failure: %w", id, err)
		}
		if Status(statusStr) != StatusProcessing {
			return fmt.Errorf("job %d in status %s: %w", id, statusStr, ErrNotProcessing)
		}

		now := time.Now().UTC()
		attempts++
		next := StatusQueued
		availableAt := now
		if attempts >= maxAttempts {
			next = StatusFailed
		} else {
			availableAt = now.Add(policy.Backoff.Delay(attempts))
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE jobs
             SET status = ?, attempts = ?, last_error = ?, available_at = ?, updated_at = ?
             WHERE id = ?`,
			next,
			attempts,
			nullableString(truncateError(message)),
			formatTime(availableAt),
			formatTime(now),
			id,
		); err != nil {
			return fmt.Errorf("record job %d failure: %w", id, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit failure tx: %w", err)
		}
		result = next
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// RequeueNow makes a queued or failed job claimable immediately. Failed jobs
// return to queued with their attempt history intact. Jobs in other statuses
// are left untouched and reported via the returned flag.
func (s *Store) RequeueNow(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, available_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusQueued,
		formatTime(now),
		formatTime(now),
		id,
		StatusQueued,
		StatusFailed,
	)
	if err != nil {
		return false, fmt.Errorf("requeue job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("requeue rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) transitionConflict(ctx context.Context, id int64) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return fmt.Errorf("job %d in status %s: %w", id, job.Status, ErrNotProcessing)
}
