package mcp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/storecheck/storecheck/internal/mcp"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

type reportSource api.Report

func (s reportSource) Get() api.Report {
	return api.Report(s)
}

type historySource []api.Record

func (s historySource) Records() []api.Record {
	return s
}

var base = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

var testReport = reportSource{
	Entries: []api.SnapshotEntry{
		{
			ID:              "cart-api",
			Name:            "Cart API",
			Category:        api.CategoryAPI,
			Endpoint:        "/cart",
			Status:          api.StatusHealthy,
			Latency:         150 * time.Millisecond,
			Availability:    99.9,
			LastCheck:       base,
			BusinessMetrics: map[string]float64{"activeCartSessions": 1247},
		},
		{
			ID:           "home",
			Name:         "Homepage",
			Category:     api.CategoryWeb,
			Endpoint:     "/",
			Status:       api.StatusDegraded,
			Latency:      600 * time.Millisecond,
			Availability: 98.5,
			LastCheck:    base,
			Incidents: []api.Incident{
				{ID: "i2", Severity: api.SeverityWarning, Message: "slow", Timestamp: base},
				{ID: "i1", Severity: api.SeverityCritical, Message: "down", Timestamp: base.Add(-time.Hour)},
			},
		},
	},
}

func TestFetchStatusByJQ(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name   string
		JQ     string
		Expect any
	}{
		{"ids", `map(.id)`, []any{"cart-api", "home"}},
		{"degraded", `.[] | select(.status == "degraded") | .name`, "Homepage"},
		{"metrics", `.[0].business_metrics.activeCartSessions`, 1247.0},
		{"incident_count", `map(.incidents)`, []any{0, 2}},
		{"nothing", `.[] | select(.status == "down")`, []any(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			output, err := mcp.FetchStatusByJQ(context.Background(), testReport, mcp.StatusInput{JQ: tt.JQ})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.Expect, output.Result); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("invalid_jq", func(t *testing.T) {
		if _, err := mcp.FetchStatusByJQ(context.Background(), testReport, mcp.StatusInput{JQ: "invalid{{"}); err == nil {
			t.Error("expected error for invalid jq query")
		}
	})
}

func TestFetchIncidentsByJQ(t *testing.T) {
	t.Parallel()

	output, err := mcp.FetchIncidentsByJQ(context.Background(), testReport, mcp.IncidentsInput{
		JQ: `map({id, endpoint_id, severity})`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []any{
		map[string]any{"id": "i1", "endpoint_id": "home", "severity": "critical"},
		map[string]any{"id": "i2", "endpoint_id": "home", "severity": "warning"},
	}
	if diff := cmp.Diff(want, output.Result); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestFetchHistoryByJQ(t *testing.T) {
	t.Parallel()

	history := historySource{
		{ID: "cart-api", Status: api.StatusHealthy, Latency: 100 * time.Millisecond, Timestamp: base},
		{ID: "home", Status: api.StatusDown, Latency: 3000 * time.Millisecond, Timestamp: base.Add(time.Minute), Diagnostic: "timeout"},
		{ID: "cart-api", Status: api.StatusDegraded, Latency: 300 * time.Millisecond, Timestamp: base.Add(2 * time.Minute)},
	}

	tests := []struct {
		Name   string
		Input  mcp.HistoryInput
		Expect any
		Error  bool
	}{
		{"all", mcp.HistoryInput{JQ: `length`}, 3, false},
		{"by_id", mcp.HistoryInput{ID: "cart-api", JQ: `map(.status)`}, []any{"healthy", "degraded"}, false},
		{"since", mcp.HistoryInput{Since: "2025-10-01T12:01:00Z", JQ: `map(.id)`}, []any{"home", "cart-api"}, false},
		{"until", mcp.HistoryInput{Until: "2025-10-01T12:01:00Z", JQ: `map(.latency_ms)`}, []any{100.0, 3000.0}, false},
		{"aggregate", mcp.HistoryInput{JQ: `map(select(.status != "healthy")) | group_by(.id) | map({id: .[0].id, count: length})`}, []any{
			map[string]any{"id": "cart-api", "count": 1},
			map[string]any{"id": "home", "count": 1},
		}, false},
		{"invalid_since", mcp.HistoryInput{Since: "yesterday"}, nil, true},
		{"invalid_jq", mcp.HistoryInput{JQ: "]"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			output, err := mcp.FetchHistoryByJQ(context.Background(), history, tt.Input)
			if tt.Error {
				if err == nil {
					t.Fatalf("expected error but got %v", output.Result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.Expect, output.Result); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuery_statusRank(t *testing.T) {
	t.Parallel()

	output, err := mcp.FetchStatusByJQ(context.Background(), testReport, mcp.StatusInput{
		JQ: `sort_by(.status | status_rank) | reverse | map(.id)`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"home", "cart-api"}, output.Result); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}

	q, err := mcp.CompileQuery(`status_rank`)
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	if _, err := q.Run(context.Background(), "exploded"); err == nil {
		t.Errorf("expected error for unknown status")
	}
}

func TestQuery_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Name   string
		JQ     string
		Input  any
		Expect any
		Error  string
	}{
		{"identity", ``, []any{1, 2}, []any{1, 2}, ""},
		{"halt", `.[] | if . > 2 then halt else . end`, []any{1, 2, 3, 4}, []any{1, 2}, ""},
		{"halt_error", `"catalog is empty" | halt_error(5)`, nil, nil, "query halted with exit code 5: catalog is empty"},
		{"too_many", `range(1001)`, nil, nil, "please aggregate them"},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			q, err := mcp.CompileQuery(tt.JQ)
			if err != nil {
				t.Fatalf("failed to compile: %v", err)
			}

			output, err := q.Run(context.Background(), tt.Input)
			if tt.Error != "" {
				if err == nil || !strings.Contains(err.Error(), tt.Error) {
					t.Fatalf("expected error including %q but got %v", tt.Error, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.Expect, output.Result); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}
