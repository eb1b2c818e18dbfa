package queue

import (
	"context"
	"fmt"
	"time"
)

// staleRecoveryNote is appended to last_error when a job is pulled back from
// an abandoned processing state. Prior error text is preserved.
const staleRecoveryNote = "requeued: processing exceeded staleness threshold"

// Claim atomically selects up to maxCount eligible queued jobs and marks them
// processing. Before selection, any job that has sat in processing without a
// row update for longer than staleAfter is returned to queued with a recovery
// note; its attempt count is untouched because an abandoned claim is an
// infrastructure failure, not a logical one.
//
// Selection is ordered by priority descending, then availability time, then
// id. Each candidate is flipped with an update conditioned on status still
// being queued, so concurrent claimers cannot double-claim: losing the race
// just drops the row from the returned set.
func (s *Store) Claim(ctx context.Context, maxCount int, staleAfter time.Duration) ([]*Job, error) {
	ctx = ensureContext(ctx)
	if maxCount <= 0 {
		return nil, nil
	}

	var claimed []*Job
	err := retryOnBusy(ctx, func() error {
		claimed = nil
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin claim tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC()

		if staleAfter > 0 {
			cutoff := now.Add(-staleAfter)
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE jobs
                 SET status = ?, available_at = ?, updated_at = ?,
                     last_error = CASE
                         WHEN last_error IS NULL OR last_error = '' THEN ?
                         ELSE last_error || char(10) || ?
                     END
                 WHERE status = ? AND updated_at < ?`,
				StatusQueued,
				formatTime(now),
				formatTime(now),
				staleRecoveryNote,
				staleRecoveryNote,
				StatusProcessing,
				formatTime(cutoff),
			); err != nil {
				return fmt.Errorf("requeue stale jobs: %w", err)
			}
		}

		rows, err := tx.QueryContext(
			ctx,
			`SELECT `+jobColumns+` FROM jobs
             WHERE status = ? AND available_at <= ?
             ORDER BY priority DESC, available_at ASC, id ASC
             LIMIT ?`,
			StatusQueued,
			formatTime(now),
			maxCount,
		)
		if err != nil {
			return fmt.Errorf("select claim candidates: %w", err)
		}
		candidates, err := collectJobs(rows)
		if err != nil {
			return fmt.Errorf("scan claim candidates: %w", err)
		}

		for _, job := range candidates {
			res, err := tx.ExecContext(
				ctx,
				`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
				StatusProcessing,
				formatTime(now),
				job.ID,
				StatusQueued,
			)
			if err != nil {
				return fmt.Errorf("claim job %d: %w", job.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("claim job %d rows affected: %w", job.ID, err)
			}
			if affected != 1 {
				// Lost to a concurrent claimer; the job stays available for
				// whoever won it.
				continue
			}
			job.Status = StatusProcessing
			job.UpdatedAt = now
			claimed = append(claimed, job)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit claim tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
