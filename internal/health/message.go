package health

import (
	"fmt"

	api "github.com/storecheck/storecheck/lib-storecheck"
)

func newContext(o api.Outcome, e api.Endpoint, s api.Status) api.MessageContext {
	return api.MessageContext{
		Name:       e.Name,
		Status:     s,
		Latency:    o.LatencyMs(),
		StatusCode: o.StatusCode,
	}
}

func render(t *api.Template, ctx api.MessageContext) (string, bool) {
	if t == nil {
		return "", false
	}

	msg, err := t.Render(ctx)
	if err != nil {
		return "", false
	}
	return msg, true
}

// Diagnose makes the diagnostic text of a check.
//
// A failed probe always gets a connectivity message.
// Otherwise the profile template for the status is used, or a generic text if there is no template.
func Diagnose(o api.Outcome, e api.Endpoint, s api.Status, p api.Profile) string {
	if !o.Responded {
		return fmt.Sprintf("CRITICAL: %s. Service experiencing connectivity issues.", o.Error)
	}

	if msg, ok := render(p.Diagnostics.For(s), newContext(o, e, s)); ok {
		return msg
	}

	return fmt.Sprintf("System %s. Latency: %dms", s, o.LatencyMs())
}

// IncidentMessage makes the message of the incident of the current check.
// It returns an empty string for healthy status because healthy checks have no incident.
func IncidentMessage(o api.Outcome, e api.Endpoint, s api.Status, p api.Profile) string {
	if s == api.StatusHealthy {
		return ""
	}
	if !o.Responded {
		return "Connection failed: " + o.Error
	}

	if msg, ok := render(p.Incidents.For(s), newContext(o, e, s)); ok {
		return msg
	}

	if s == api.StatusDown {
		return "Service unavailable"
	}
	return "Performance degradation detected"
}
