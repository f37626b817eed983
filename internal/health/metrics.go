package health

import (
	"math"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

// BusinessMetrics evaluates the metric formulas of the profile.
// The result is never nil.
func BusinessMetrics(p api.Profile, latencyMs int64, s api.Status) map[string]float64 {
	ms := make(map[string]float64, len(p.Metrics))

	for _, m := range p.Metrics {
		switch m.Kind {
		case api.MetricLatency:
			ms[m.Name] = math.Floor(float64(latencyMs)*m.Factor + 0.5)
		case api.MetricStatus:
			switch s {
			case api.StatusHealthy:
				ms[m.Name] = m.Healthy
			case api.StatusDegraded:
				ms[m.Name] = m.Degraded
			default:
				ms[m.Name] = m.Down
			}
		case api.MetricFixed:
			ms[m.Name] = m.Value
		}
	}

	return ms
}
