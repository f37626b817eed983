package storecheck

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

// Summary is the overall result of a run.
type Summary struct {
	Healthy  int `json:"healthy"`
	Degraded int `json:"degraded"`
	Down     int `json:"down"`

	// CriticalDown is the names of critical endpoints in down status.
	CriticalDown []string `json:"critical_down"`
}

// Add counts an endpoint status into the summary.
func (s *Summary) Add(e Endpoint, status Status) {
	switch status {
	case StatusHealthy:
		s.Healthy++
	case StatusDegraded:
		s.Degraded++
	case StatusDown:
		s.Down++
		if e.Critical {
			s.CriticalDown = append(s.CriticalDown, e.Name)
		}
	}
}

// Total returns the number of counted endpoints.
func (s Summary) Total() int {
	return s.Healthy + s.Degraded + s.Down
}

// HealthPercentage returns the percentage of healthy endpoints, rounded to an integer.
func (s Summary) HealthPercentage() int {
	if s.Total() == 0 {
		return 0
	}
	return int(math.Floor(float64(s.Healthy)*100/float64(s.Total()) + 0.5))
}

// CriticalSystemDown reports whether any critical endpoint is down.
func (s Summary) CriticalSystemDown() bool {
	return len(s.CriticalDown) > 0
}

// ExitCode returns 0 if no endpoint is down, otherwise 1.
func (s Summary) ExitCode() int {
	if s.Down > 0 {
		return 1
	}
	return 0
}

// Report is the output of a run that handed to snapshot publishers.
type Report struct {
	Entries     []SnapshotEntry
	Summary     Summary
	GeneratedAt time.Time
}

type jsonReport struct {
	Entries     []SnapshotEntry `json:"entries"`
	Summary     Summary         `json:"summary"`
	GeneratedAt string          `json:"generated_at"`
}

// MarshalJSON implements the json.Marshaler interface.
func (r Report) MarshalJSON() ([]byte, error) {
	jr := jsonReport{
		Entries:     r.Entries,
		Summary:     r.Summary,
		GeneratedAt: FormatTime(r.GeneratedAt),
	}

	if jr.Entries == nil {
		jr.Entries = []SnapshotEntry{}
	}
	if jr.Summary.CriticalDown == nil {
		jr.Summary.CriticalDown = []string{}
	}

	return json.Marshal(jr)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Report) UnmarshalJSON(data []byte) error {
	var jr jsonReport

	if err := json.Unmarshal(data, &jr); err != nil {
		return err
	}

	generatedAt, err := ParseTime(jr.GeneratedAt)
	if err != nil {
		return err
	}

	*r = Report{
		Entries:     jr.Entries,
		Summary:     jr.Summary,
		GeneratedAt: generatedAt,
	}

	return nil
}
