// ABOUTME: SQLite-backed run history: one row per finished (or stopped) sort run plus its event log.
// ABOUTME: Provides record, list, get, events, and delete operations keyed by ULID run IDs.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2389-research/ducksort/sorting"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a run ID has no row.
var ErrNotFound = errors.New("history: run not found")

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Run is one recorded sort run.
type Run struct {
	RunID       ulid.ULID
	Scenario    string
	Initial     []int
	Final       []int
	Comparisons int
	Swaps       int
	Steps       int
	Retries     int
	Speed       float64
	Completed   bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			initial_values TEXT NOT NULL,
			final_values TEXT NOT NULL,
			comparisons INTEGER NOT NULL,
			swaps INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			retries INTEGER NOT NULL,
			speed REAL NOT NULL,
			completed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS run_events (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run ID.
func NewRunID() ulid.ULID { return sorting.NewULID() }

// RecordRun inserts or replaces a run together with its event log.
func (s *Store) RecordRun(run Run, events []sorting.Event) error {
	initial, err := json.Marshal(run.Initial)
	if err != nil {
		return fmt.Errorf("marshal initial values: %w", err)
	}
	final, err := json.Marshal(run.Final)
	if err != nil {
		return fmt.Errorf("marshal final values: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, scenario, initial_values, final_values, comparisons, swaps,
			steps, retries, speed, completed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			final_values = excluded.final_values,
			comparisons = excluded.comparisons,
			swaps = excluded.swaps,
			steps = excluded.steps,
			retries = excluded.retries,
			completed = excluded.completed,
			finished_at = excluded.finished_at`,
		run.RunID.String(),
		run.Scenario,
		string(initial),
		string(final),
		run.Comparisons,
		run.Swaps,
		run.Steps,
		run.Retries,
		run.Speed,
		run.Completed,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM run_events WHERE run_id = ?", run.RunID.String()); err != nil {
		return fmt.Errorf("clear run events: %w", err)
	}
	for _, ev := range events {
		payload, err := sorting.MarshalEventPayload(ev.Payload)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.Seq, err)
		}
		_, err = tx.Exec(
			`INSERT INTO run_events (run_id, seq, event_id, event_type, payload, at) VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID.String(), ev.Seq, ev.ID.String(), ev.Payload.EventPayloadType(),
			string(payload), ev.Timestamp.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", ev.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, scenario, initial_values, final_values, comparisons, swaps,
	steps, retries, speed, completed, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		id                string
		initial, final    string
		started, finished string
	)
	if err := sc.Scan(&id, &r.Scenario, &initial, &final, &r.Comparisons, &r.Swaps,
		&r.Steps, &r.Retries, &r.Speed, &r.Completed, &started, &finished); err != nil {
		return Run{}, err
	}
	var err error
	if r.RunID, err = ulid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(initial), &r.Initial); err != nil {
		return Run{}, fmt.Errorf("decode initial values: %w", err)
	}
	if err := json.Unmarshal([]byte(final), &r.Final); err != nil {
		return Run{}, fmt.Errorf("decode final values: %w", err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY run_id DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID.
func (s *Store) GetRun(id ulid.ULID) (Run, error) {
	row := s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// Events returns a run's recorded events in order.
func (s *Store) Events(id ulid.ULID) ([]sorting.Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, event_id, payload, at FROM run_events WHERE run_id = ? ORDER BY seq ASC`,
		id.String())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []sorting.Event
	for rows.Next() {
		var (
			ev          sorting.Event
			eid, at     string
			payloadJSON string
		)
		if err := rows.Scan(&ev.Seq, &eid, &payloadJSON, &at); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if ev.ID, err = ulid.Parse(eid); err != nil {
			return nil, fmt.Errorf("parse event id: %w", err)
		}
		if ev.Payload, err = sorting.UnmarshalEventPayload([]byte(payloadJSON)); err != nil {
			return nil, err
		}
		if ev.Timestamp, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteRun removes a run and its events.
func (s *Store) DeleteRun(id ulid.ULID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection, so events are removed explicitly
	if _, err := tx.Exec("DELETE FROM run_events WHERE run_id = ?", id.String()); err != nil {
		return fmt.Errorf("delete run events: %w", err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE run_id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}
