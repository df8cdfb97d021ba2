// Package history keeps a SQLite record of benchmark runs so that timings
// can be compared across versions of a file or of the parsers.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/TuftsBCB/nexbench/internal/bench"
)

//go:embed schema.sql
var schemaSQL string

// Run is one invocation of the benchmark: every parser timed against the
// same file.
type Run struct {
	ID         uuid.UUID
	File       string
	Iterations int
	StartedAt  time.Time
	Results    []bench.Result
}

// NewRun returns a Run with a fresh ID.
func NewRun(file string, iterations int, startedAt time.Time, results []bench.Result) Run {
	return Run{
		ID:         uuid.New(),
		File:       file,
		Iterations: iterations,
		StartedAt:  startedAt,
		Results:    results,
	}
}

// Store manages the SQLite database of runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if necessary) the database at dbPath. The special
// path ":memory:" gives a private in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to ":memory:" is a different database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry retries statements that fail because another process holds
// the database lock.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run and its results in a single transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		return fmt.Errorf("record run: missing run ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, iterations, started_at) VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.File, run.Iterations, run.StartedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, res := range run.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, parser, iterations, elapsed_ns)
			 VALUES (?, ?, ?, ?, ?)`,
			run.ID.String(), i, res.Parser, res.Iterations, int64(res.Elapsed))
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", res.Parser, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to n runs, newest first. n <= 0 returns every run.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	query := `SELECT id, file, iterations, started_at FROM runs
	          ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		var (
			run       Run
			id        string
			startedAt int64
		)
		if err := rows.Scan(&id, &run.File, &run.Iterations, &startedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("run ID %q: %w", id, err)
		}
		run.StartedAt = time.Unix(0, startedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	// Results are loaded once the runs cursor is closed: the store uses a
	// single connection.
	for i := range runs {
		if runs[i].Results, err = s.results(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) results(ctx context.Context, id uuid.UUID) ([]bench.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parser, iterations, elapsed_ns FROM results
		 WHERE run_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query results of %s: %w", id, err)
	}
	defer rows.Close()

	var results []bench.Result
	for rows.Next() {
		var (
			res     bench.Result
			elapsed int64
		)
		if err := rows.Scan(&res.Parser, &res.Iterations, &elapsed); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Elapsed = time.Duration(elapsed)
		results = append(results, res)
	}
	return results, rows.Err()
}
