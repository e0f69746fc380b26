// Package pipeline runs the refresh → parse → aggregate → report sequence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epitrend/internal/dataset"
	"epitrend/internal/infra"
	"epitrend/internal/report"
)

// Stage names used in StageError and log lines.
const (
	StageLoad      = "load"
	StageParse     = "parse"
	StageFreshness = "freshness"
	StageFetch     = "fetch"
	StageReport    = "report"
)

// StageError names the pipeline stage that aborted a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Cache loads the raw dataset bytes.
type Cache interface {
	Exists() bool
	Load() ([]byte, error)
}

// Refresher performs the single remote fetch of a run.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Reporter consumes the final dataset.
type Reporter interface {
	Report(ds *dataset.Dataset) (report.Result, error)
}

// Runner wires the pipeline stages together.
type Runner struct {
	Cache           Cache
	Fetcher         Refresher
	Reporter        Reporter
	ReferenceEntity string
	Now             func() time.Time
	Logger          *infra.Logger
}

// Run executes one full pipeline pass. At most one fetch is attempted.
func (r *Runner) Run(ctx context.Context) (report.Result, error) {
	logger := r.logger()
	now := r.Now
	if now == nil {
		now = time.Now
	}

	if !r.Cache.Exists() {
		logger.Info().Str("stage", StageFetch).Msg("pipeline: no cached dataset, downloading")
		if _, err := r.Fetcher.Refresh(ctx); err != nil {
			return report.Result{}, &StageError{Stage: StageFetch, Err: err}
		}
		ds, err := r.load()
		if err != nil {
			return report.Result{}, err
		}
		return r.report(ds)
	}

	ds, err := r.load()
	if err != nil {
		return report.Result{}, err
	}

	fresh, err := dataset.CheckFreshness(ds, r.ReferenceEntity, now())
	if err != nil {
		return report.Result{}, &StageError{Stage: StageFreshness, Err: err}
	}
	logger.Info().
		Str("stage", StageFreshness).
		Str("reference", r.ReferenceEntity).
		Time("latest", fresh.LatestDate).
		Int("age_days", fresh.AgeDays).
		Str("status", fresh.Status.String()).
		Msg("pipeline: freshness checked")

	if fresh.Status == dataset.Stale {
		updated, err := r.Fetcher.Refresh(ctx)
		if err != nil {
			return report.Result{}, &StageError{Stage: StageFetch, Err: err}
		}
		if updated {
			if ds, err = r.load(); err != nil {
				return report.Result{}, err
			}
		}
	}

	return r.report(ds)
}

func (r *Runner) load() (*dataset.Dataset, error) {
	raw, err := r.Cache.Load()
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	ds, err := dataset.Parse(raw)
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}
	r.logger().Debug().
		Str("stage", StageParse).
		Int("records", ds.Len()).
		Int("entities", ds.EntityCount()).
		Strs("entity_ids", ds.Entities()).
		Msg("pipeline: dataset parsed")
	return ds, nil
}

func (r *Runner) report(ds *dataset.Dataset) (report.Result, error) {
	res, err := r.Reporter.Report(ds)
	if err != nil {
		return res, &StageError{Stage: StageReport, Err: err}
	}
	return res, nil
}

func (r *Runner) logger() *infra.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	l := infra.NopLogger()
	return &l
}

// Stage extracts the failing stage name from err.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "unknown"
}
