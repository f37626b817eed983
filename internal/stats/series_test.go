package stats_test

import (
	"testing"
	"time"

	"github.com/storecheck/storecheck/internal/stats"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

func constNoise(v float64) stats.Noise {
	return func() float64 { return v }
}

func assertNonDecreasing(t *testing.T, ps []api.Point) {
	t.Helper()

	for i := 1; i < len(ps); i++ {
		if ps[i].Timestamp.Before(ps[i-1].Timestamp) {
			t.Errorf("point %d is older than point %d: %s < %s", i, i-1, ps[i].Timestamp, ps[i-1].Timestamp)
		}
	}
}

func TestSeries_synthetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name    string
		Latency time.Duration
		Status  api.Status
		Noise   float64
		Want    float64
	}{
		{"center", 150 * time.Millisecond, api.StatusHealthy, 0.5, 150},
		{"healthy-low", 150 * time.Millisecond, api.StatusHealthy, 0, 125},
		{"degraded-high", 600 * time.Millisecond, api.StatusDegraded, 0.9, 640},
		{"down-low", 1500 * time.Millisecond, api.StatusDown, 0, 1350},
		{"floor", 5 * time.Millisecond, api.StatusHealthy, 0, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			history := makeHistory("a", repeat(api.StatusHealthy, 9)...)
			ps := stats.Series("a", history, tt.Latency, tt.Status, baseTime, constNoise(tt.Noise))

			if len(ps) != stats.SeriesLength {
				t.Fatalf("expected %d points but got %d", stats.SeriesLength, len(ps))
			}
			assertNonDecreasing(t, ps)

			if !ps[0].Timestamp.Equal(baseTime.Add(-30 * time.Minute)) {
				t.Errorf("unexpected first timestamp: %s", ps[0].Timestamp)
			}
			if !ps[30].Timestamp.Equal(baseTime) {
				t.Errorf("unexpected last timestamp: %s", ps[30].Timestamp)
			}

			for i, p := range ps {
				if p.Value < tt.Want-0.001 || p.Value > tt.Want+0.001 {
					t.Errorf("%d: expected %v but got %v", i, tt.Want, p.Value)
				}
			}
		})
	}
}

func TestSeries_history(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name    string
		Records int
		Want    int
	}{
		{"minimum", stats.SeriesMinRecords, stats.SeriesMinRecords},
		{"partial", 12, 12},
		{"full", stats.SeriesWindow, stats.SeriesWindow},
		{"overflow", 45, stats.SeriesWindow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			stored := makeHistory("a", repeat(api.StatusHealthy, tt.Records)...)
			history := append(stored, makeHistory("b", repeat(api.StatusHealthy, 40)...)...)

			noise := func() float64 {
				t.Fatalf("noise should not be used when history is enough")
				return 0
			}

			ps := stats.Series("a", history, 999*time.Millisecond, api.StatusDegraded, baseTime, noise)

			if len(ps) != tt.Want {
				t.Fatalf("expected %d points but got %d", tt.Want, len(ps))
			}
			assertNonDecreasing(t, ps)

			offset := tt.Records - tt.Want
			for i, p := range ps {
				r := stored[offset+i]
				if p.Value != float64(r.Latency.Milliseconds()) {
					t.Errorf("%d: expected stored latency %v but got %v", i, r.Latency.Milliseconds(), p.Value)
				}
				if !p.Timestamp.Equal(r.Timestamp) {
					t.Errorf("%d: expected stored timestamp %s but got %s", i, r.Timestamp, p.Timestamp)
				}
			}
		})
	}
}
