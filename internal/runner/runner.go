// Package runner runs one round of health checks over the catalog.
package runner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/storecheck/storecheck/internal/catalog"
	"github.com/storecheck/storecheck/internal/health"
	"github.com/storecheck/storecheck/internal/probe"
	"github.com/storecheck/storecheck/internal/stats"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// State is the phase of a run.
type State int8

const (
	StateIdle State = iota
	StateProbing
	StateAggregating
	StatePersisted
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateAggregating:
		return "aggregating"
	case StatePersisted:
		return "persisted"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HistoryStore is the history log that a Runner reads before probing and appends to after aggregation.
type HistoryStore interface {
	Load() []api.Record
	Append([]api.Record) error
}

// SnapshotWriter writes the snapshot of a run.
type SnapshotWriter interface {
	WriteSnapshot([]api.SnapshotEntry) error
}

// Publisher receives the report of every run, after the snapshot is written.
type Publisher interface {
	Publish(ctx context.Context, r api.Report) error
}

// PublisherFunc is a function that implements Publisher.
type PublisherFunc func(ctx context.Context, r api.Report) error

func (f PublisherFunc) Publish(ctx context.Context, r api.Report) error {
	return f(ctx, r)
}

// Result is the result of a run.
type Result struct {
	State   State
	Entries []api.SnapshotEntry

	// Records is the records of this run, which are appended to the history.
	Records []api.Record

	Summary api.Summary
	Report  api.Report
}

// ExitCode returns the exit code of a oneshot run.
func (r Result) ExitCode() int {
	if r.State == StateFailed {
		return 1
	}
	return r.Summary.ExitCode()
}

// Runner runs health checks.
type Runner struct {
	Catalog    catalog.Catalog
	Prober     probe.Prober
	History    HistoryStore
	Snapshot   SnapshotWriter
	Publishers []Publisher

	// Now returns the current time. time.Now is used if nil.
	Now func() time.Time

	// Noise is the random source for synthesized latency series. math/rand is used if nil.
	Noise stats.Noise

	Logger zerolog.Logger
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Runner) noise() stats.Noise {
	if r.Noise != nil {
		return r.Noise
	}
	return rand.Float64
}

// Run probes every endpoint in the catalog concurrently, and then aggregates and persists the results.
//
// The returned error is not nil only if the snapshot could not be written; the Result is still valid in that case, with StateFailed.
// History and publisher failures are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	history := r.History.Load()

	r.Logger.Debug().Int("endpoints", len(r.Catalog.Endpoints)).Int("history", len(history)).Msg(StateProbing.String())
	outcomes := r.ProbeAll(ctx)

	now := r.now()

	r.Logger.Debug().Msg(StateAggregating.String())
	entries, records := r.Aggregate(outcomes, history, now)

	res := Result{
		State:   StateAggregating,
		Entries: entries,
		Records: records,
	}
	for i, e := range r.Catalog.Endpoints {
		res.Summary.Add(e, entries[i].Status)
	}
	res.Report = api.Report{
		Entries:     entries,
		Summary:     res.Summary,
		GeneratedAt: now,
	}

	if err := r.History.Append(records); err != nil {
		r.Logger.Warn().Err(err).Msg("failed to save history")
	}

	if err := r.Snapshot.WriteSnapshot(entries); err != nil {
		r.Logger.Error().Err(err).Msg("failed to write snapshot")
		res.State = StateFailed
		return res, err
	}
	res.State = StatePersisted

	for _, p := range r.Publishers {
		if err := p.Publish(ctx, res.Report); err != nil {
			r.Logger.Warn().Err(err).Msg("failed to publish report")
		}
	}

	res.State = StateDone

	r.Logger.Info().
		Int("healthy", res.Summary.Healthy).
		Int("degraded", res.Summary.Degraded).
		Int("down", res.Summary.Down).
		Int("health_percentage", res.Summary.HealthPercentage()).
		Strs("critical_down", res.Summary.CriticalDown).
		Msg("run finished")

	return res, nil
}

// ProbeAll probes every endpoint concurrently and returns outcomes in the catalog order.
// Each probe has its own timeout; a slow endpoint never cancels others.
func (r *Runner) ProbeAll(ctx context.Context) []api.Outcome {
	outcomes := make([]api.Outcome, len(r.Catalog.Endpoints))

	var wg sync.WaitGroup
	for i, e := range r.Catalog.Endpoints {
		wg.Add(1)
		go func(i int, e api.Endpoint) {
			defer wg.Done()
			outcomes[i] = r.Prober.Probe(ctx, e)
		}(i, e)
	}
	wg.Wait()

	return outcomes
}

// Aggregate classifies the outcomes and computes the snapshot entries against the history before this run.
//
// outcomes must be in the catalog order. history is not modified.
// The result does not depend on anything but the arguments, except for the noise of synthesized series.
func (r *Runner) Aggregate(outcomes []api.Outcome, history []api.Record, now time.Time) ([]api.SnapshotEntry, []api.Record) {
	now = now.UTC()
	noise := r.noise()

	entries := make([]api.SnapshotEntry, len(r.Catalog.Endpoints))
	records := make([]api.Record, len(r.Catalog.Endpoints))

	for i, e := range r.Catalog.Endpoints {
		o := outcomes[i]
		p := r.Catalog.Profile(e.ID)

		status := health.Classify(o, e)
		diag := health.Diagnose(o, e, status, p)
		latency := o.LatencyMs()

		ev := r.Logger.Info()
		if status != api.StatusHealthy {
			ev = r.Logger.Warn()
		}
		ev.Str("endpoint", e.ID).
			Stringer("status", status).
			Int64("latency_ms", latency).
			Int("status_code", o.StatusCode).
			Str("error", o.Error).
			Msg("checked")

		entries[i] = api.SnapshotEntry{
			ID:              e.ID,
			Name:            e.Name,
			Type:            e.Type,
			Category:        e.Category,
			Endpoint:        e.Path(),
			Status:          status,
			Latency:         time.Duration(latency) * time.Millisecond,
			Availability:    stats.Availability(e.ID, history, status),
			LastCheck:       now,
			Diagnostic:      diag,
			BusinessMetrics: health.BusinessMetrics(p, latency, status),
			PerformanceData: stats.Series(e.ID, history, o.Latency, status, now, noise),
			Incidents:       stats.Incidents(e.ID, history, status, health.IncidentMessage(o, e, status, p), now),
		}

		records[i] = api.Record{
			ID:         e.ID,
			Status:     status,
			Latency:    time.Duration(latency) * time.Millisecond,
			Timestamp:  now,
			Diagnostic: diag,
		}
	}

	return entries, records
}
