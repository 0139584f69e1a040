package ingest

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cricket-etl/internal/cricsheet"
)

// matchLoader is the loader surface the engine drives; satisfied by *Loader
// and by test stubs.
type matchLoader interface {
	LoadMatch(ctx context.Context, batch *MatchBatch) (*LoadResult, error)
}

// runRecorder is the run-accounting surface; satisfied by *RunLog.
type runRecorder interface {
	Start(ctx context.Context) (string, error)
	Complete(ctx context.Context, runID string, report *RunReport) error
	Fail(ctx context.Context, runID string, msg string) error
}

// Engine drives a batch ingestion run: list the source documents, then
// parse, flatten, and load each one. Matches are independent units of work,
// so the engine optionally fans out across a bounded worker pool, one
// transaction per match.
type Engine struct {
	loader  matchLoader
	runLog  runRecorder
	workers int
}

// RunReport summarizes one batch run.
type RunReport struct {
	Loaded     int
	Skipped    int
	Failed     int
	Deliveries int64
	Failures   []string // source files that failed to parse, validate, or load
	Elapsed    time.Duration
}

// NewEngine creates an ingestion engine. runLog may be nil to skip run
// accounting. workers < 1 means sequential processing.
func NewEngine(loader matchLoader, runLog runRecorder, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{loader: loader, runLog: runLog, workers: workers}
}

// Run ingests every match document in dir. A document that fails to parse or
// validate is reported and skipped; a destination failure rolls back that
// match only — unless it is connectivity loss, which aborts the whole run.
func (e *Engine) Run(ctx context.Context, dir string) (*RunReport, error) {
	log := zap.L().With(zap.String("component", "ingest.engine"))
	start := time.Now()

	paths, err := cricsheet.List(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("ingest: no match documents found in %s", dir)
	}

	log.Info("starting ingestion",
		zap.Int("documents", len(paths)),
		zap.Int("workers", e.workers),
	)

	var runID string
	if e.runLog != nil {
		runID, err = e.runLog.Start(ctx)
		if err != nil {
			return nil, err
		}
	}

	var loaded, skipped, failed atomic.Int64
	var deliveries atomic.Int64
	var mu sync.Mutex
	var failures []string

	recordFailure := func(src string) {
		failed.Add(1)
		mu.Lock()
		failures = append(failures, src)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, path := range paths {
		g.Go(func() error {
			doc, src, err := e.parseOne(path)
			docLog := log.With(zap.String("source_file", src))
			if err != nil {
				docLog.Error("document rejected", zap.Error(err))
				recordFailure(src)
				return nil
			}

			batch, err := Flatten(doc, src)
			if err != nil {
				docLog.Error("document rejected", zap.Error(err))
				recordFailure(src)
				return nil
			}

			res, err := e.loader.LoadMatch(gctx, batch)
			if err != nil {
				// The group context cancels once any worker aborts; in-flight
				// loads then fail with context.Canceled without the document
				// itself being at fault.
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if isConnectivityErr(err) {
					return eris.Wrapf(err, "ingest: destination unreachable at %s", src)
				}
				docLog.Error("load failed, match rolled back", zap.Error(err))
				recordFailure(src)
				return nil
			}

			switch res.Status {
			case StatusSkipped:
				skipped.Add(1)
			default:
				loaded.Add(1)
				deliveries.Add(res.Deliveries)
			}
			return nil
		})
	}

	runErr := g.Wait()

	report := &RunReport{
		Loaded:     int(loaded.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
		Deliveries: deliveries.Load(),
		Failures:   failures,
		Elapsed:    time.Since(start),
	}

	if e.runLog != nil && runID != "" {
		// Record the outcome on a fresh context: the group context is
		// canceled once any worker fails.
		logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if runErr != nil {
			if logErr := e.runLog.Fail(logCtx, runID, runErr.Error()); logErr != nil {
				log.Warn("failed to record run failure", zap.Error(logErr))
			}
		} else if logErr := e.runLog.Complete(logCtx, runID, report); logErr != nil {
			log.Warn("failed to record run completion", zap.Error(logErr))
		}
	}

	log.Info("ingestion run complete",
		zap.Int("loaded", report.Loaded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("deliveries", report.Deliveries),
		zap.Duration("elapsed", report.Elapsed),
	)

	return report, runErr
}

func (e *Engine) parseOne(path string) (*cricsheet.Document, string, error) {
	doc, src, err := cricsheet.ParseFile(path)
	if err != nil {
		return nil, src, err
	}
	return doc, src, nil
}

// isConnectivityErr distinguishes losing the destination from a per-match
// rejection. Class 08 is PostgreSQL's connection-exception family.
func isConnectivityErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
