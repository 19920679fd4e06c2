// Package history persists convergence runs to a SQLite database under
// .arkain/state/ so past loop behavior can be inspected after the fact:
// one row per run, one row per iteration verdict.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	job          TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT,
	converged    INTEGER NOT NULL DEFAULT 0,
	forced       INTEGER NOT NULL DEFAULT 0,
	iterations   INTEGER NOT NULL DEFAULT 0,
	verdict      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS iterations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	iteration    INTEGER NOT NULL,
	converged    INTEGER NOT NULL,
	verdict      TEXT NOT NULL,
	blockers     INTEGER NOT NULL,
	highs        INTEGER NOT NULL,
	warnings     INTEGER NOT NULL,
	summary      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Run is one convergence loop execution over a job directory.
type Run struct {
	ID         string
	Job        string
	StartedAt  time.Time
	FinishedAt *time.Time
	Converged  bool
	Forced     bool
	Iterations int
	Verdict    string
}

// IterationRecord is one loop iteration's verdict snapshot.
type IterationRecord struct {
	Iteration int
	Converged bool
	Verdict   string
	Blockers  int
	Highs     int
	Warnings  int
	Summary   string
	CreatedAt time.Time
}

// Store manages run history in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens the history database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("history: pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("history: pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a new run and returns it.
func (s *Store) BeginRun(job string) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Job:       job,
		StartedAt: s.now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, job, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Job, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("history: begin run: %w", err)
	}
	return run, nil
}

// RecordIteration appends one iteration verdict to a run.
func (s *Store) RecordIteration(runID string, record IterationRecord) error {
	created := record.CreatedAt
	if created.IsZero() {
		created = s.now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO iterations (run_id, iteration, converged, verdict, blockers, highs, warnings, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, record.Iteration, boolInt(record.Converged), record.Verdict,
		record.Blockers, record.Highs, record.Warnings, record.Summary,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: record iteration: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final outcome.
func (s *Store) FinishRun(runID string, converged, forced bool, iterations int, verdict string) error {
	finished := s.now().UTC().Format(time.RFC3339Nano)
	result, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, converged = ?, forced = ?, iterations = ?, verdict = ? WHERE run_id = ?`,
		finished, boolInt(converged), boolInt(forced), iterations, verdict, runID,
	)
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("history: run %s not found", runID)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT run_id, job, started_at, finished_at, converged, forced, iterations, verdict
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run for a job, if any.
func (s *Store) LatestRun(job string) (Run, bool, error) {
	row := s.db.QueryRow(
		`SELECT run_id, job, started_at, finished_at, converged, forced, iterations, verdict
		 FROM runs WHERE job = ? ORDER BY started_at DESC LIMIT 1`, job)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// Iterations returns a run's iteration records in order.
func (s *Store) Iterations(runID string) ([]IterationRecord, error) {
	rows, err := s.db.Query(
		`SELECT iteration, converged, verdict, blockers, highs, warnings, summary, created_at
		 FROM iterations WHERE run_id = ? ORDER BY iteration ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: list iterations: %w", err)
	}
	defer rows.Close()

	var records []IterationRecord
	for rows.Next() {
		var record IterationRecord
		var converged int
		var created string
		if err := rows.Scan(&record.Iteration, &converged, &record.Verdict,
			&record.Blockers, &record.Highs, &record.Warnings, &record.Summary, &created); err != nil {
			return nil, fmt.Errorf("history: scan iteration: %w", err)
		}
		record.Converged = converged != 0
		record.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("history: parse iteration time: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started string
	var finished sql.NullString
	var converged, forced int
	if err := row.Scan(&run.ID, &run.Job, &started, &finished, &converged, &forced, &run.Iterations, &run.Verdict); err != nil {
		return Run{}, err
	}
	startedAt, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("history: parse run time: %w", err)
	}
	run.StartedAt = startedAt
	if finished.Valid {
		finishedAt, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("history: parse run time: %w", err)
		}
		run.FinishedAt = &finishedAt
	}
	run.Converged = converged != 0
	run.Forced = forced != 0
	return run, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
