package storecheck

// Messages is a set of message templates for each status.
// A nil template means there is no template for the status.
type Messages struct {
	Healthy  *Template
	Degraded *Template
	Down     *Template
}

// For returns the template for the status, or nil.
func (m Messages) For(s Status) *Template {
	switch s {
	case StatusHealthy:
		return m.Healthy
	case StatusDegraded:
		return m.Degraded
	case StatusDown:
		return m.Down
	default:
		return nil
	}
}

// MetricKind is how a business metric is computed.
type MetricKind string

const (
	// MetricLatency is the check latency in milliseconds multiplied by Factor, rounded to an integer.
	MetricLatency MetricKind = "latency"

	// MetricStatus takes Healthy, Degraded, or Down value depending on the current status.
	MetricStatus MetricKind = "status"

	// MetricFixed is always Value.
	MetricFixed MetricKind = "fixed"
)

// Metric is a formula of a business metric.
type Metric struct {
	Name string
	Kind MetricKind

	Factor float64
	Value  float64

	Healthy  float64
	Degraded float64
	Down     float64
}

// Profile is the endpoint-specific texts and business metrics.
//
// The zero value is valid and means that the endpoint uses generic messages and has no business metrics.
type Profile struct {
	// Diagnostics is the templates of the diagnostic text.
	Diagnostics Messages

	// Incidents is the templates of the incident message. Only Degraded and Down are used.
	Incidents Messages

	Metrics []Metric
}
