package storecheck_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	cart := api.Endpoint{ID: "cart", Name: "Cart API", Critical: true}
	home := api.Endpoint{ID: "home", Name: "Homepage"}

	var s api.Summary
	s.Add(home, api.StatusHealthy)
	s.Add(home, api.StatusDegraded)
	s.Add(home, api.StatusDown)

	if s.Total() != 3 || s.HealthPercentage() != 33 {
		t.Errorf("unexpected summary: total=%d health=%d", s.Total(), s.HealthPercentage())
	}
	if s.CriticalSystemDown() {
		t.Errorf("non-critical endpoint must not raise critical flag")
	}
	if s.ExitCode() != 1 {
		t.Errorf("expected exit code 1 but got %d", s.ExitCode())
	}

	s.Add(cart, api.StatusDown)
	if diff := cmp.Diff([]string{"Cart API"}, s.CriticalDown); diff != "" {
		t.Errorf("unexpected critical list\n%s", diff)
	}

	var ok api.Summary
	ok.Add(home, api.StatusDegraded)
	if ok.ExitCode() != 0 {
		t.Errorf("degraded only must exit with 0 but got %d", ok.ExitCode())
	}
	if (api.Summary{}).HealthPercentage() != 0 {
		t.Errorf("empty summary must be 0%%")
	}
}

func TestReport_json(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	u, _ := url.Parse("https://shop.example.com/en_us/search?q=ghost")

	ep := api.Endpoint{ID: "search", Name: "Search", Type: "Web Page", Category: api.CategoryWeb, URL: u}

	r1 := api.Report{
		Entries: []api.SnapshotEntry{{
			ID:              ep.ID,
			Name:            ep.Name,
			Type:            ep.Type,
			Category:        ep.Category,
			Endpoint:        ep.Path(),
			Status:          api.StatusDegraded,
			Latency:         600 * time.Millisecond,
			Availability:    98.5,
			LastCheck:       at,
			Diagnostic:      "slow",
			BusinessMetrics: map[string]float64{"searchLatency": 600},
			PerformanceData: []api.Point{{Timestamp: at, Value: 600}},
			Incidents:       []api.Incident{{ID: "x", Severity: api.SeverityWarning, Message: "slow", Timestamp: at}},
		}},
		Summary:     api.Summary{Degraded: 1, CriticalDown: []string{}},
		GeneratedAt: at,
	}

	j, err := json.Marshal(r1)
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}

	var r2 api.Report
	if err := json.Unmarshal(j, &r2); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}

	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("report changed by round trip\n%s", diff)
	}

	if r1.Entries[0].Endpoint != "/en_us/search?q=ghost" {
		t.Errorf("unexpected display path: %s", r1.Entries[0].Endpoint)
	}
}

func TestSnapshotEntry_MarshalJSON_emptyLists(t *testing.T) {
	t.Parallel()

	j, err := json.Marshal(api.SnapshotEntry{ID: "a"})
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(j, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}

	for _, k := range []string{"incidents", "performanceData"} {
		if xs, ok := raw[k].([]any); !ok || len(xs) != 0 {
			t.Errorf("%s must be an empty array but got %#v", k, raw[k])
		}
	}
	if m, ok := raw["businessMetrics"].(map[string]any); !ok || len(m) != 0 {
		t.Errorf("businessMetrics must be an empty object but got %#v", raw["businessMetrics"])
	}
}
