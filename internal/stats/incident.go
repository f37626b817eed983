package stats

import (
	"time"

	"github.com/google/uuid"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	// MaxIncidents is the maximum number of incidents of an endpoint, including the current one.
	MaxIncidents = 5

	fallbackIncidentMessage = "Performance issue detected"
)

var incidentNamespace = uuid.MustParse("8d1f6c53-3b0e-4c4a-9e43-5f0b8f3b7a21")

// IncidentID derives the stable ID of an incident.
// The same endpoint, time, and severity always give the same ID.
func IncidentID(id string, t time.Time, s api.Severity) string {
	return uuid.NewSHA1(incidentNamespace, []byte(id+"\x00"+api.FormatTime(t)+"\x00"+string(s))).String()
}

// Incidents makes the recent incidents of the endpoint, newest first.
//
// A healthy check has no incident, so the result is empty if current is healthy.
// Otherwise the first incident is the current check with the given message, followed by incidents rebuilt from the most recent non-healthy records.
func Incidents(id string, history []api.Record, current api.Status, message string, now time.Time) []api.Incident {
	if current == api.StatusHealthy {
		return []api.Incident{}
	}

	sev := api.SeverityOf(current)
	is := []api.Incident{{
		ID:        IncidentID(id, now, sev),
		Severity:  sev,
		Message:   message,
		Timestamp: now.UTC(),
	}}

	for i := len(history) - 1; i >= 0 && len(is) < MaxIncidents; i-- {
		r := history[i]
		if r.ID != id || r.Status == api.StatusHealthy {
			continue
		}

		msg := r.Diagnostic
		if msg == "" {
			msg = fallbackIncidentMessage
		}

		sev := api.SeverityOf(r.Status)
		is = append(is, api.Incident{
			ID:        IncidentID(id, r.Timestamp, sev),
			Severity:  sev,
			Message:   msg,
			Timestamp: r.Timestamp,
		})
	}

	return is
}
