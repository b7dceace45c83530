// Package runlog keeps a SQLite ledger of completed runs. The per-item state
// lives in JSON record files; this ledger only answers "what did past runs
// do" for the runs command.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists run summaries.
type Store struct {
	db   *sql.DB
	path string
}

// Summary is one completed run. Retried counts pending items carried over
// from earlier runs; Fresh counts this run's newly selected candidates.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Retried    int
	Fresh      int
	Succeeded  int
	Failed     int
	Skipped    int
}

// Items is the total work the run took on.
func (s Summary) Items() int {
	return s.Retried + s.Fresh
}

// Duration reports how long the run took.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    retried     INTEGER NOT NULL,
    fresh       INTEGER NOT NULL,
    succeeded   INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    skipped     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open connects to (or creates) the ledger at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init run ledger schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one completed run. Run ids are unique; recording the same
// id twice is an error.
func (s *Store) Record(ctx context.Context, summary Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, retried, fresh, succeeded, failed, skipped)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.Retried,
		summary.Fresh,
		summary.Succeeded,
		summary.Failed,
		summary.Skipped,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", summary.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, retried, fresh, succeeded, failed, skipped
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary  Summary
			started  string
			finished string
		)
		if err := rows.Scan(&summary.RunID, &started, &finished,
			&summary.Retried, &summary.Fresh, &summary.Succeeded, &summary.Failed, &summary.Skipped); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if summary.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", summary.RunID, err)
		}
		if summary.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at for %s: %w", summary.RunID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
