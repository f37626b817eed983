package endpoint

import (
	"context"
	"sync/atomic"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

// Latest holds the report of the last run.
// It is a runner.Publisher, so the handler always serves the report of the last finished run.
type Latest struct {
	v atomic.Value
}

// Publish replaces the current report.
func (l *Latest) Publish(ctx context.Context, r api.Report) error {
	l.v.Store(r)
	return nil
}

// Get returns the latest report.
// The report has no entries if nothing was published yet.
func (l *Latest) Get() api.Report {
	if v := l.v.Load(); v != nil {
		return v.(api.Report)
	}
	return api.Report{Entries: []api.SnapshotEntry{}}
}
