package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cricket-etl/internal/db"
)

// RunEntry is a row of cricket.ingest_log.
type RunEntry struct {
	ID              string
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	MatchesLoaded   int
	MatchesSkipped  int
	DocumentsFailed int
	Error           string
}

// RunLog records batch-run accounting in cricket.ingest_log. It is
// bookkeeping only: the idempotency contract lives entirely in the matches
// uniqueness constraint, never in run history.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a run and returns its id.
func (r *RunLog) Start(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cricket.ingest_log (id, status, started_at) VALUES ($1, 'running', now())`,
		id,
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as finished and stores its counters.
func (r *RunLog) Complete(ctx context.Context, runID string, report *RunReport) error {
	status := "complete"
	var errText *string
	if report.Failed > 0 {
		// Failed documents (parse, validation, or load) leave the run complete
		// but flagged, so a rerun can target the named files.
		t := "failed documents: " + strings.Join(report.Failures, ", ")
		errText = &t
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE cricket.ingest_log
		 SET status = $1, completed_at = now(),
		     matches_loaded = $2, matches_skipped = $3, documents_failed = $4, error = $5
		 WHERE id = $6`,
		status, report.Loaded, report.Skipped, report.Failed, errText, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as aborted.
func (r *RunLog) Fail(ctx context.Context, runID string, msg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE cricket.ingest_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		msg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (r *RunLog) Recent(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at,
		        matches_loaded, matches_skipped, documents_failed, COALESCE(error, '')
		 FROM cricket.ingest_log
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list recent runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(
			&e.ID, &e.Status, &e.StartedAt, &e.CompletedAt,
			&e.MatchesLoaded, &e.MatchesSkipped, &e.DocumentsFailed, &e.Error,
		); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate runs")
	}
	return entries, nil
}
