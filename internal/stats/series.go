package stats

import (
	"math"
	"time"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	// SeriesLength is the number of points in a synthesized series.
	SeriesLength = 31

	// SeriesMinRecords is the minimum number of records to build the series from history.
	SeriesMinRecords = 10

	// SeriesWindow is the number of stored records in a series built from history.
	SeriesWindow = 30

	// SeriesInterval is the interval of points in a synthesized series.
	SeriesInterval = time.Minute

	minSyntheticLatency = 10
)

var noiseBand = map[api.Status]float64{
	api.StatusHealthy:  50,
	api.StatusDegraded: 100,
	api.StatusDown:     300,
}

// Noise is a source of uniformly distributed numbers in [0, 1).
type Noise func() float64

// Series makes the latency series of the endpoint for the trend chart, oldest first.
//
// If the endpoint has SeriesMinRecords records or more, the series is the last SeriesWindow stored records as is.
// Otherwise SeriesLength points are synthesized around the current latency, one per SeriesInterval and ending at now.
// The noise is used only for synthesized points.
func Series(id string, history []api.Record, latency time.Duration, current api.Status, now time.Time, noise Noise) []api.Point {
	rs := api.FilterRecords(history, id)
	if len(rs) >= SeriesMinRecords {
		rs = lastN(rs, SeriesWindow)

		ps := make([]api.Point, len(rs))
		for i, r := range rs {
			ps[i] = api.Point{
				Timestamp: r.Timestamp,
				Value:     float64(r.Latency.Milliseconds()),
			}
		}
		return ps
	}

	ms := float64(latency.Milliseconds())
	band := noiseBand[current]

	ps := make([]api.Point, SeriesLength)
	for i := range ps {
		ps[i] = api.Point{
			Timestamp: now.Add(-time.Duration(SeriesLength-1-i) * SeriesInterval).UTC(),
			Value:     math.Max(minSyntheticLatency, ms+(noise()-0.5)*band),
		}
	}
	return ps
}
