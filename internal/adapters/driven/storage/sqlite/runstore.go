package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, mode, collection, records, inserted, updated, skipped, failed,
	error, started_at, finished_at`

// Save stores or replaces a run.
func (s *runStore) Save(ctx context.Context, run domain.SyncRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			collection = excluded.collection,
			records = excluded.records,
			inserted = excluded.inserted,
			updated = excluded.updated,
			skipped = excluded.skipped,
			failed = excluded.failed,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`,
		run.ID,
		string(run.Mode),
		run.Collection,
		run.Records,
		run.Inserted,
		run.Updated,
		run.Skipped,
		run.Failed,
		nullableString(run.Error),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM sync_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.SyncRun, error) {
	var (
		run                   domain.SyncRun
		mode                  string
		errMsg                sql.NullString
		startedAt, finishedAt string
	)
	err := sc.Scan(
		&run.ID, &mode, &run.Collection,
		&run.Records, &run.Inserted, &run.Updated, &run.Skipped, &run.Failed,
		&errMsg, &startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Mode = domain.SyncMode(mode)
	run.Error = errMsg.String
	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		run.StartedAt = t
	}
	if t, err := time.Parse(timeLayout, finishedAt); err == nil {
		run.FinishedAt = t
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
