package mcp

import (
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// RecordToMap converts a history record to a map for jq.
func RecordToMap(r api.Record) map[string]any {
	return map[string]any{
		"id":         r.ID,
		"status":     r.Status.String(),
		"latency_ms": float64(r.Latency.Milliseconds()),
		"timestamp":  api.FormatTime(r.Timestamp),
		"time_unix":  int(r.Timestamp.Unix()),
		"diagnostic": r.Diagnostic,
	}
}

// IncidentToMap converts an incident of the endpoint to a map for jq.
func IncidentToMap(endpointID string, inc api.Incident) map[string]any {
	return map[string]any{
		"id":          inc.ID,
		"endpoint_id": endpointID,
		"severity":    string(inc.Severity),
		"message":     inc.Message,
		"timestamp":   api.FormatTime(inc.Timestamp),
		"time_unix":   int(inc.Timestamp.Unix()),
	}
}

// EntryToMap converts a snapshot entry to a map for jq.
// Performance series and incidents are left out; use query_history and query_incidents for them.
func EntryToMap(e api.SnapshotEntry) map[string]any {
	metrics := make(map[string]any, len(e.BusinessMetrics))
	for k, v := range e.BusinessMetrics {
		metrics[k] = v
	}

	return map[string]any{
		"id":               e.ID,
		"name":             e.Name,
		"type":             e.Type,
		"category":         string(e.Category),
		"endpoint":         e.Endpoint,
		"status":           e.Status.String(),
		"latency_ms":       float64(e.Latency.Milliseconds()),
		"availability":     e.Availability,
		"last_check":       api.FormatTime(e.LastCheck),
		"diagnostic":       e.Diagnostic,
		"business_metrics": metrics,
		"incidents":        len(e.Incidents),
	}
}
