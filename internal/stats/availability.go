// Package stats derives rolling-window statistics of an endpoint from the history.
//
// Every function in this package is pure. The history is the log before the current run; the current check is passed separately.
package stats

import (
	"math"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	// AvailabilityWindow is the number of recent records used for availability.
	AvailabilityWindow = 100
)

// coldStart is the availability of an endpoint that has no history yet.
var coldStart = map[api.Status]float64{
	api.StatusHealthy:  99.9,
	api.StatusDegraded: 98.5,
	api.StatusDown:     94.0,
}

// Availability calculates the percentage of healthy checks in the last AvailabilityWindow records of the endpoint.
//
// If the endpoint has no record yet, a fixed prior based on the current status is returned instead of a measured value.
func Availability(id string, history []api.Record, current api.Status) float64 {
	rs := lastN(api.FilterRecords(history, id), AvailabilityWindow)
	if len(rs) == 0 {
		return coldStart[current]
	}

	healthy := 0
	for _, r := range rs {
		if r.Status == api.StatusHealthy {
			healthy++
		}
	}

	return roundHalfUp(100*float64(healthy)/float64(len(rs)), 2)
}

func roundHalfUp(x float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Floor(x*p+0.5) / p
}

func lastN(rs []api.Record, n int) []api.Record {
	if len(rs) > n {
		return rs[len(rs)-n:]
	}
	return rs
}
