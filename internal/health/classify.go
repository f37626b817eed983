// Package health decides the status of an endpoint from a probe outcome, and describes it.
package health

import (
	"time"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

// Thresholds is the latency limits of a category.
// A latency strictly greater than the limit falls into the status.
type Thresholds struct {
	Degraded time.Duration
	Down     time.Duration
}

var thresholds = map[api.Category]Thresholds{
	api.CategoryAPI: {Degraded: 200 * time.Millisecond, Down: 1000 * time.Millisecond},
	api.CategoryWeb: {Degraded: 500 * time.Millisecond, Down: 2000 * time.Millisecond},
}

// ThresholdsOf returns the latency thresholds of the category.
// Unknown categories are treated as web.
func ThresholdsOf(c api.Category) Thresholds {
	if t, ok := thresholds[c]; ok {
		return t
	}
	return thresholds[api.CategoryWeb]
}

// Classify decides the status of the outcome.
//
// A failed probe or an unexpected status code is always down.
// Otherwise the latency in whole milliseconds is compared with the thresholds of the endpoint category.
func Classify(o api.Outcome, e api.Endpoint) api.Status {
	if !o.Responded {
		return api.StatusDown
	}
	if o.StatusCode != e.ExpectedStatus {
		return api.StatusDown
	}

	t := ThresholdsOf(e.Category)
	ms := o.LatencyMs()

	switch {
	case ms > t.Down.Milliseconds():
		return api.StatusDown
	case ms > t.Degraded.Milliseconds():
		return api.StatusDegraded
	default:
		return api.StatusHealthy
	}
}
