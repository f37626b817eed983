package storecheck

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Record is a result of one probe in the history.
// Records are immutable once written.
type Record struct {
	// ID is the endpoint ID.
	ID string

	Status  Status
	Latency time.Duration

	// Timestamp is the time the check finished, in UTC.
	Timestamp time.Time

	// Diagnostic is the human readable description of the status.
	Diagnostic string
}

type jsonRecord struct {
	ID         string  `json:"id"`
	Status     *Status `json:"status"`
	Latency    float64 `json:"latency"`
	Timestamp  string  `json:"timestamp"`
	Diagnostic string  `json:"diagnostic"`
}

// MarshalJSON implements the json.Marshaler interface.
// Latency is written in milliseconds.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRecord{
		ID:         r.ID,
		Status:     &r.Status,
		Latency:    float64(r.Latency.Milliseconds()),
		Timestamp:  FormatTime(r.Timestamp),
		Diagnostic: r.Diagnostic,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Record) UnmarshalJSON(data []byte) error {
	var jr jsonRecord

	if err := json.Unmarshal(data, &jr); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, err)
	}

	if jr.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}

	if jr.Status == nil {
		return fmt.Errorf("%w: status is required", ErrInvalidRecord)
	}

	ts, err := ParseTime(jr.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: timestamp: %s", ErrInvalidRecord, err)
	}

	*r = Record{
		ID:         jr.ID,
		Status:     *jr.Status,
		Latency:    durationFromMs(jr.Latency),
		Timestamp:  ts,
		Diagnostic: jr.Diagnostic,
	}

	return nil
}

// FilterRecords returns the records of the endpoint in the same order as the history.
func FilterRecords(history []Record, id string) []Record {
	var rs []Record
	for _, r := range history {
		if r.ID == id {
			rs = append(rs, r)
		}
	}
	return rs
}
