// Package journal persists a local history of reindex runs in sqlite so an
// operator can tell what was rebuilt when, and why a run failed.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("journal path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("journal path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite journal %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("journal is not open")
	}
	return s.db.PingContext(ctx)
}

// RecordRun writes a completed run and its executed steps in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Started.IsZero() {
		run.Started = time.Now().UTC()
	}
	if run.Finished.IsZero() {
		run.Finished = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (run_id, prefix, force_flag, ef_flag, started_utc, finished_utc, status)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Prefix, boolInt(run.Force), boolInt(run.EF),
		run.Started.UTC().Format(time.RFC3339Nano),
		run.Finished.UTC().Format(time.RFC3339Nano),
		run.Status,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, step := range run.Steps {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO run_steps (run_id, step_index, artifact, action, duration_ms, error)
VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, step.Artifact, step.Action, step.Duration.Milliseconds(), step.Error,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert run step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// LoadRuns returns the most recent runs for a prefix, newest first, with
// their steps attached. An empty prefix matches every run.
func (s *Store) LoadRuns(ctx context.Context, prefix string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	query := `
SELECT run_id, prefix, force_flag, ef_flag, started_utc, finished_utc, status
FROM runs`
	args := []interface{}{}
	if prefix != "" {
		query += ` WHERE prefix = ?`
		args = append(args, prefix)
	}
	query += ` ORDER BY started_utc DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			forceInt, efInt   int
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Prefix, &forceInt, &efInt, &started, &finished, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Force = forceInt != 0
		r.EF = efInt != 0
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.Started = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			r.Finished = ts
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		steps, err := s.loadSteps(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

func (s *Store) loadSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT artifact, action, duration_ms, error
FROM run_steps WHERE run_id = ? ORDER BY step_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			durationMS int64
		)
		if err := rows.Scan(&step.Artifact, &step.Action, &durationMS, &step.Error); err != nil {
			return nil, fmt.Errorf("scan run step: %w", err)
		}
		step.Duration = time.Duration(durationMS) * time.Millisecond
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
