package storecheck

import (
	"fmt"
)

const (
	// StatusHealthy means the endpoint answered the expected status code within the latency budget of its category.
	StatusHealthy Status = iota

	// StatusDegraded means the endpoint answered correctly but slower than the degraded threshold.
	StatusDegraded

	// StatusDown means the endpoint failed, answered an unexpected status code, or exceeded the down threshold.
	// Operators have to do something when an endpoint is in this status.
	StatusDown
)

// Status is the health status of an endpoint.
//
// The values are ordered by severity: StatusHealthy < StatusDegraded < StatusDown.
type Status int8

// ParseStatus parses status string like "healthy".
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case "healthy":
		return StatusHealthy, nil
	case "degraded":
		return StatusDegraded, nil
	case "down":
		return StatusDown, nil
	default:
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, raw)
	}
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// Severity returns the rank of the status for comparison.
func (s Status) Severity() int {
	return int(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	x, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = x
	return nil
}

// Severity is the severity of an Incident.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityOf returns the incident severity for a non-healthy status.
func SeverityOf(s Status) Severity {
	switch s {
	case StatusDown:
		return SeverityCritical
	case StatusDegraded:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
