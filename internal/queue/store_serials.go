package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// NextSerial atomically increments and returns the folder's sequence counter,
// creating the counter row on first use. Serials are strictly increasing and
// never reused, even across restarts, so the ingestion side can rely on them
// for artifact naming.
func (s *Store) NextSerial(ctx context.Context, folder string) (int64, error) {
	ctx = ensureContext(ctx)
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return 0, errors.New("folder is required")
	}

	var serial int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin serial tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO folder_serials (folder, last_serial) VALUES (?, 1)
             ON CONFLICT(folder) DO UPDATE SET last_serial = last_serial + 1`,
			folder,
		); err != nil {
			return fmt.Errorf("advance serial for %q: %w", folder, err)
		}

		row := tx.QueryRowContext(ctx, `SELECT last_serial FROM folder_serials WHERE folder = ?`, folder)
		if err := row.Scan(&serial); err != nil {
			return fmt.Errorf("read serial for %q: %w", folder, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit serial tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return serial, nil
}

// LastSerial reports the most recently issued serial for a folder, zero when
// no serial has been issued yet.
func (s *Store) LastSerial(ctx context.Context, folder string) (int64, error) {
	var serial int64
	row := s.db.QueryRowContext(ctx, `SELECT last_serial FROM folder_serials WHERE folder = ?`, strings.TrimSpace(folder))
	if err := row.Scan(&serial); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read serial for %q: %w", folder, err)
	}
	return serial, nil
}
