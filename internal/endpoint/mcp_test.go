package endpoint_test

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/storecheck/storecheck/internal/endpoint"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

func callTool(t *testing.T, url, tool string, args any) (any, bool) {
	t.Helper()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "none",
	}, nil)
	sess, err := client.Connect(t.Context(), &mcp.StreamableClientTransport{
		Endpoint: url + "/mcp",
	}, nil)
	if err != nil {
		t.Fatalf("failed to connect to MCP server: %v", err)
	}
	defer sess.Close()

	result, err := sess.CallTool(t.Context(), &mcp.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("failed to call tool %q: %v", tool, err)
	}

	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content, got %#v", result.Content)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %#v", result.Content[0])
	}
	if result.IsError {
		return text.Text, false
	}

	var output struct {
		Result any `json:"result"`
	}
	if err := json.Unmarshal([]byte(text.Text), &output); err != nil {
		t.Fatalf("failed to unmarshal result: %v\n%s", err, text.Text)
	}
	return output.Result, true
}

func TestMCPHandler(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	report := sampleReport()
	report.Entries[1].Incidents = []api.Incident{
		{ID: "b", Severity: api.SeverityCritical, Message: "Service unavailable", Timestamp: base.Add(time.Minute)},
		{ID: "a", Severity: api.SeverityWarning, Message: "Performance degradation detected", Timestamp: base},
	}

	latest := &endpoint.Latest{}
	latest.Publish(context.Background(), report)

	srv := startServer(t, latest, dummyStore{
		healthy: true,
		records: []api.Record{
			{ID: "cart", Status: api.StatusHealthy, Latency: 100 * time.Millisecond, Timestamp: base},
			{ID: "checkout", Status: api.StatusDown, Latency: 2500 * time.Millisecond, Timestamp: base.Add(time.Minute)},
			{ID: "cart", Status: api.StatusDegraded, Latency: 300 * time.Millisecond, Timestamp: base.Add(2 * time.Minute)},
		},
	})

	tests := []struct {
		Name   string
		Tool   string
		Args   map[string]any
		Expect any
	}{
		{
			"status_unhealthy",
			"query_status",
			map[string]any{"jq": `map(select(.status != "healthy") | .id)`},
			[]any{"checkout"},
		},
		{
			"incidents_oldest_first",
			"query_incidents",
			map[string]any{"jq": `map(.id)`},
			[]any{"a", "b"},
		},
		{
			"history_by_id",
			"query_history",
			map[string]any{"id": "cart", "jq": `map(.latency_ms)`},
			[]any{100.0, 300.0},
		},
		{
			"history_since",
			"query_history",
			map[string]any{"since": "2025-10-01T12:01:00Z", "jq": `length`},
			2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got, ok := callTool(t, srv.URL, tt.Tool, tt.Args)
			if !ok {
				t.Fatalf("tool returned error: %v", got)
			}
			if diff := cmp.Diff(tt.Expect, got); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("invalid_jq", func(t *testing.T) {
		if got, ok := callTool(t, srv.URL, "query_status", map[string]any{"jq": "invalid{{"}); ok {
			t.Errorf("expected error but got %v", got)
		}
	})
}
