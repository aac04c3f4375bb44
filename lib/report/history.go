package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"storefront-e2e/lib/report/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("e2e.lib.report")

// History keeps the results of past runs in a sqlite database.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating when needed) the database at path, ":memory:"
// keeps everything in memory.
func OpenHistory(path string) (*History, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer and every :memory: connection is its own database
	conn.SetMaxOpenConns(1)

	if path != ":memory:" {
		_, err = conn.Exec("pragma journal_mode = wal")
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	_, err = conn.Exec(db.Schema)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &History{db: conn}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Record stores one run and its results, recording the same run id twice
// is an error. The summary of run is computed from results.
func (h *History) Record(ctx context.Context, run Run, results []Result) (err error) {
	runID := run.ID
	ctx, span := tracer.Start(ctx, "History.Record", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("results", len(results)),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record run")
		}
	}()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := Summarize(results)
	_, err = tx.ExecContext(ctx,
		`insert into run (id, name, started, duration_ms, total, passed, failed, skipped)
		values (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, run.Name, run.Started.UnixMilli(), s.Duration.Milliseconds(),
		s.Total, s.Passed, s.Failed, s.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	for i, res := range results {
		_, err = tx.ExecContext(ctx,
			`insert into result (run_id, position, suite, scenario_id, title, status, attempts, duration_ms, error)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, res.Suite, res.ID, res.Title, string(res.Status),
			res.Attempts, res.Duration.Milliseconds(), res.Err,
		)
		if err != nil {
			return fmt.Errorf("insert result %q: %w", res.Title, err)
		}
	}
	return tx.Commit()
}

type Run struct {
	ID      string
	Name    string
	Started time.Time
	Summary Summary
}

// Runs returns the n most recent runs, newest first.
func (h *History) Runs(ctx context.Context, n int) ([]Run, error) {
	rows, err := h.db.QueryContext(ctx,
		`select id, name, started, duration_ms, total, passed, failed, skipped
		from run order by started desc, id desc limit ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, duration int64
		err = rows.Scan(&run.ID, &run.Name, &started, &duration,
			&run.Summary.Total, &run.Summary.Passed, &run.Summary.Failed, &run.Summary.Skipped)
		if err != nil {
			return nil, err
		}
		run.Started = time.UnixMilli(started)
		run.Summary.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type Entry struct {
	RunID      string
	RunStarted time.Time
	Result
}

// Recent returns the results of the n most recent runs, newest run first and
// in recorded order within a run.
func (h *History) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx,
		`select r.run_id, run.started, r.suite, r.scenario_id, r.title, r.status, r.attempts, r.duration_ms, r.error
		from result r
		join (select id, started from run order by started desc, id desc limit ?) run on run.id = r.run_id
		order by run.started desc, r.run_id desc, r.position`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, duration int64
		var status string
		err = rows.Scan(&e.RunID, &started, &e.Suite, &e.ID, &e.Title, &status, &e.Attempts, &duration, &e.Err)
		if err != nil {
			return nil, err
		}
		e.RunStarted = time.UnixMilli(started)
		e.Status = Status(status)
		e.Duration = time.Duration(duration) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
