package storecheck

import (
	"time"

	"github.com/goccy/go-json"
)

// Incident is a derived event that represents a non-healthy check.
// Incidents are rebuilt from the history on every run and are not stored by themselves.
type Incident struct {
	ID        string
	Severity  Severity
	Message   string
	Timestamp time.Time
}

type jsonIncident struct {
	ID        string   `json:"id"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
}

// MarshalJSON implements the json.Marshaler interface.
func (i Incident) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonIncident{
		ID:        i.ID,
		Severity:  i.Severity,
		Message:   i.Message,
		Timestamp: FormatTime(i.Timestamp),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *Incident) UnmarshalJSON(data []byte) error {
	var ji jsonIncident

	if err := json.Unmarshal(data, &ji); err != nil {
		return err
	}

	ts, err := ParseTime(ji.Timestamp)
	if err != nil {
		return err
	}

	*i = Incident{
		ID:        ji.ID,
		Severity:  ji.Severity,
		Message:   ji.Message,
		Timestamp: ts,
	}

	return nil
}
