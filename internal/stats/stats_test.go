package stats_test

import (
	"fmt"
	"time"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// makeHistory makes records of the endpoint, one minute apart, ending one minute before baseTime.
func makeHistory(id string, statuses ...api.Status) []api.Record {
	rs := make([]api.Record, len(statuses))
	for i, s := range statuses {
		rs[i] = api.Record{
			ID:         id,
			Status:     s,
			Latency:    time.Duration(100+i) * time.Millisecond,
			Timestamp:  baseTime.Add(-time.Duration(len(statuses)-i) * time.Minute),
			Diagnostic: fmt.Sprintf("record %d", i),
		}
	}
	return rs
}

func repeat(s api.Status, n int) []api.Status {
	ss := make([]api.Status, n)
	for i := range ss {
		ss[i] = s
	}
	return ss
}
