// Package db persists accumulation runs and their running series in
// sqlite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fold-data/running.report/internal/reduce"
	"github.com/fold-data/running.report/internal/timeutil"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// DB wraps the sqlite connection for the run store.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

// Run is a persisted accumulation: the request that produced it and the
// resulting series.
type Run struct {
	ID      string    `json:"id"`
	Reducer string    `json:"reducer"`
	Seeded  bool      `json:"seeded"`
	Seed    float64   `json:"seed,omitempty"`
	Source  string    `json:"source,omitempty"`
	Count   int       `json:"count"`
	Final   *float64  `json:"final,omitempty"`
	Created time.Time `json:"created_at"`

	// Points is populated by GetRun; list queries leave it nil.
	Points []reduce.Point `json:"points,omitempty"`
}

// NewDB opens (or creates) the sqlite database at path and ensures the
// baseline schema exists. Pass ":memory:" for an ephemeral store.
func NewDB(path string, clock timeutil.Clock) (*DB, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{DB: conn, clock: clock}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema applies the baseline schema. Migrations in migrations/
// evolve it from here; the DDL must stay in sync with 0001_init.up.sql.
func (db *DB) ensureSchema() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			reducer TEXT NOT NULL,
			seeded INTEGER NOT NULL DEFAULT 0,
			seed DOUBLE NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT '',
			value_count INTEGER NOT NULL DEFAULT 0,
			final DOUBLE,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_points (
			run_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			input DOUBLE NOT NULL,
			acc DOUBLE NOT NULL,
			PRIMARY KEY (run_id, idx),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to apply baseline schema: %w", err)
	}
	return nil
}

// CreateRun stores an applied reducer outcome and returns the persisted
// run with its id and timestamp filled in.
func (db *DB) CreateRun(reducer string, out reduce.Outcome, source string) (Run, error) {
	seed, seeded := out.Seeded()
	run := Run{
		ID:      uuid.NewString(),
		Reducer: reducer,
		Seeded:  seeded,
		Seed:    seed,
		Source:  source,
		Count:   len(out.Points),
		Created: db.clock.Now().UTC(),
		Points:  out.Points,
	}
	if final, err := out.Last(); err == nil {
		run.Final = &final
	}

	tx, err := db.Begin()
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, reducer, seeded, seed, source, value_count, final, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Reducer, run.Seeded, run.Seed, run.Source, run.Count, run.Final,
		run.Created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_points (run_id, idx, input, acc) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()
	for _, p := range run.Points {
		if _, err := stmt.Exec(run.ID, p.Index, p.Input, p.Acc); err != nil {
			return Run{}, fmt.Errorf("insert point %d: %w", p.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// GetRun loads a run and its points.
func (db *DB) GetRun(id string) (Run, error) {
	run, err := db.scanRun(id)
	if err != nil {
		return Run{}, err
	}

	rows, err := db.Query(
		`SELECT idx, input, acc FROM run_points WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var p reduce.Point
		if err := rows.Scan(&p.Index, &p.Input, &p.Acc); err != nil {
			return Run{}, err
		}
		run.Points = append(run.Points, p)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (db *DB) scanRun(id string) (Run, error) {
	var run Run
	var created string
	err := db.QueryRow(
		`SELECT run_id, reducer, seeded, seed, source, value_count, final, created_at
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&run.ID, &run.Reducer, &run.Seeded, &run.Seed, &run.Source, &run.Count, &run.Final, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("run %q: bad created_at: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, without points.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := db.Query(
		`SELECT run_id, reducer, seeded, seed, source, value_count, final, created_at
		 FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &run.Reducer, &run.Seeded, &run.Seed, &run.Source,
			&run.Count, &run.Final, &created); err != nil {
			return nil, err
		}
		if run.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %q: bad created_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
