// Package state records analysis run history in SQLite: one row per
// executed analysis with its status, headline scalar, result row count and
// timings. The store is an audit trail, not a cache; analyses never read
// from it.
package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// RunStatus is the terminal state of an analysis run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AnalysisRun is one recorded analysis execution. Headline carries the
// analysis's headline scalar (correlation coefficient, total uplift, ...)
// when it has one.
type AnalysisRun struct {
	ID          string
	Kind        string
	Status      RunStatus
	Headline    sql.NullFloat64
	RowCount    int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store is the run-history store backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path and initializes the schema.
// Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping state database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of an analysis run and returns it.
func (s *Store) BeginRun(kind string) (*AnalysisRun, error) {
	run := &AnalysisRun{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO analysis_runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Kind, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished. headline may be nil when the analysis
// has no headline scalar; errMsg empty means success.
func (s *Store) CompleteRun(id string, headline *float64, rowCount int, errMsg string) error {
	status := RunStatusCompleted
	var errPtr *string
	if errMsg != "" {
		status = RunStatusFailed
		errPtr = &errMsg
	}

	res, err := s.db.Exec(
		`UPDATE analysis_runs SET status = ?, headline = ?, row_count = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, headline, rowCount, time.Now().UTC(), errPtr, id,
	)
	if err != nil {
		return fmt.Errorf("record run completion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (*AnalysisRun, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, status, headline, row_count, started_at, completed_at, error
		 FROM analysis_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, kind, status, headline, row_count, started_at, completed_at, error
		 FROM analysis_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*AnalysisRun, error) {
	run := &AnalysisRun{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := sc.Scan(&run.ID, &run.Kind, &run.Status, &run.Headline,
		&run.RowCount, &run.StartedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}
