package storecheck

import (
	"time"

	"github.com/goccy/go-json"
)

// Point is a point of the latency series for the trend chart.
type Point struct {
	Timestamp time.Time

	// Value is the latency in milliseconds.
	Value float64
}

type jsonPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MarshalJSON implements the json.Marshaler interface.
// The timestamp is written as Unix milliseconds.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPoint{
		Timestamp: p.Timestamp.UnixMilli(),
		Value:     p.Value,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Point) UnmarshalJSON(data []byte) error {
	var jp jsonPoint

	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}

	*p = Point{
		Timestamp: time.UnixMilli(jp.Timestamp).UTC(),
		Value:     jp.Value,
	}

	return nil
}

// SnapshotEntry is the current result of an endpoint for the presentation layer.
// It is regenerated on every run.
type SnapshotEntry struct {
	ID       string
	Name     string
	Type     string
	Category Category

	// Endpoint is the display path of the URL.
	Endpoint string

	Status  Status
	Latency time.Duration

	// Availability is the percentage of healthy checks in the recent history.
	Availability float64

	LastCheck  time.Time
	Diagnostic string

	// BusinessMetrics is category-specific numeric values.
	// The keys are not interpreted by storecheck.
	BusinessMetrics map[string]float64

	PerformanceData []Point

	// Incidents is the recent incidents, newest first.
	Incidents []Incident
}

type jsonSnapshotEntry struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Type            string             `json:"type"`
	Category        Category           `json:"category"`
	Endpoint        string             `json:"endpoint"`
	Status          Status             `json:"status"`
	Latency         float64            `json:"latency"`
	Availability    float64            `json:"availability"`
	LastCheck       string             `json:"lastCheck"`
	Diagnostic      string             `json:"diagnostic"`
	BusinessMetrics map[string]float64 `json:"businessMetrics"`
	PerformanceData []Point            `json:"performanceData"`
	Incidents       []Incident         `json:"incidents"`
}

// MarshalJSON implements the json.Marshaler interface.
func (e SnapshotEntry) MarshalJSON() ([]byte, error) {
	je := jsonSnapshotEntry{
		ID:              e.ID,
		Name:            e.Name,
		Type:            e.Type,
		Category:        e.Category,
		Endpoint:        e.Endpoint,
		Status:          e.Status,
		Latency:         float64(e.Latency.Milliseconds()),
		Availability:    e.Availability,
		LastCheck:       FormatTime(e.LastCheck),
		Diagnostic:      e.Diagnostic,
		BusinessMetrics: e.BusinessMetrics,
		PerformanceData: e.PerformanceData,
		Incidents:       e.Incidents,
	}

	if je.BusinessMetrics == nil {
		je.BusinessMetrics = map[string]float64{}
	}
	if je.PerformanceData == nil {
		je.PerformanceData = []Point{}
	}
	if je.Incidents == nil {
		je.Incidents = []Incident{}
	}

	return json.Marshal(je)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *SnapshotEntry) UnmarshalJSON(data []byte) error {
	var je jsonSnapshotEntry

	if err := json.Unmarshal(data, &je); err != nil {
		return err
	}

	lastCheck, err := ParseTime(je.LastCheck)
	if err != nil {
		return err
	}

	*e = SnapshotEntry{
		ID:              je.ID,
		Name:            je.Name,
		Type:            je.Type,
		Category:        je.Category,
		Endpoint:        je.Endpoint,
		Status:          je.Status,
		Latency:         durationFromMs(je.Latency),
		Availability:    je.Availability,
		LastCheck:       lastCheck,
		Diagnostic:      je.Diagnostic,
		BusinessMetrics: je.BusinessMetrics,
		PerformanceData: je.PerformanceData,
		Incidents:       je.Incidents,
	}

	return nil
}
