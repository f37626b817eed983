package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// StatusInput is the input for query_status tool.
type StatusInput struct {
	JQ string `json:"jq,omitempty" jsonschema:"A jq query string to filter and/or aggregate status. Query receives an array of endpoints in the catalog order. Each object is like '{\"id\": \"...\", \"name\": \"...\", \"category\": \"web or api\", \"endpoint\": \"/path\", \"status\": \"healthy, degraded or down\", \"latency_ms\": ..., \"availability\": ..., \"last_check\": \"{RFC 3339}\", \"diagnostic\": \"...\", \"business_metrics\": {...}, \"incidents\": {count}}'. For example, 'map(select(.status != \"healthy\")) | map({id, status, diagnostic})' to get unhealthy endpoints. The custom function 'status_rank' maps a status name to 0, 1 or 2, so 'sort_by(.status | status_rank) | reverse' lists the worst endpoints first."`
}

// FetchStatusByJQ applies jq query to the entries of the last run.
func FetchStatusByJQ(ctx context.Context, s ReportSource, input StatusInput) (Output, error) {
	jq, err := CompileQuery(input.JQ)
	if err != nil {
		return Output{}, fmt.Errorf("failed to parse jq query: %w", err)
	}

	entries := s.Get().Entries
	xs := make([]any, 0, len(entries))
	for _, e := range entries {
		xs = append(xs, EntryToMap(e))
	}

	return jq.Run(ctx, xs)
}

// IncidentsInput is the input for query_incidents tool.
type IncidentsInput struct {
	JQ string `json:"jq,omitempty" jsonschema:"A jq query string to filter and/or aggregate incidents. Query receives an array sorted by time, oldest first. Each object is like '{\"id\": \"...\", \"endpoint_id\": \"...\", \"severity\": \"critical, warning or info\", \"message\": \"...\", \"timestamp\": \"{RFC 3339}\", \"time_unix\": ...}'. For example, 'group_by(.endpoint_id) | map({endpoint_id: .[0].endpoint_id, count: length})' to count incidents per endpoint."`
}

// FetchIncidentsByJQ applies jq query to the recent incidents of every endpoint.
func FetchIncidentsByJQ(ctx context.Context, s ReportSource, input IncidentsInput) (Output, error) {
	jq, err := CompileQuery(input.JQ)
	if err != nil {
		return Output{}, fmt.Errorf("failed to parse jq query: %w", err)
	}

	type item struct {
		time time.Time
		v    map[string]any
	}
	var items []item
	for _, e := range s.Get().Entries {
		for _, inc := range e.Incidents {
			items = append(items, item{inc.Timestamp, IncidentToMap(e.ID, inc)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].time.Before(items[j].time)
	})

	xs := make([]any, len(items))
	for i, x := range items {
		xs[i] = x.v
	}

	return jq.Run(ctx, xs)
}

// HistoryInput is the input for query_history tool.
type HistoryInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Endpoint ID to fetch. If omitted, records of all endpoints are fetched."`
	Since string `json:"since,omitempty" jsonschema:"The start time for fetching records, in RFC3339 format. If omitted, fetches from the oldest record."`
	Until string `json:"until,omitempty" jsonschema:"The end time for fetching records, in RFC3339 format. If omitted, fetches until the newest record."`
	JQ    string `json:"jq,omitempty" jsonschema:"A jq query string to filter and/or aggregate records. Query receives an array sorted by time, oldest first. Each object is like '{\"id\": \"...\", \"status\": \"...\", \"latency_ms\": ..., \"timestamp\": \"{RFC 3339}\", \"time_unix\": ..., \"diagnostic\": \"...\"}'. For example, 'group_by(.id) | map({id: .[0].id, max_latency: (map(.latency_ms) | max)})' to get the worst latency per endpoint."`
}

// FetchHistoryByJQ applies jq query to the history records.
func FetchHistoryByJQ(ctx context.Context, s HistorySource, input HistoryInput) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var since, until time.Time
	if input.Since != "" {
		t, err := api.ParseTime(input.Since)
		if err != nil {
			return Output{}, fmt.Errorf("since time must be in RFC3339 format but got %q", input.Since)
		}
		since = t
	}
	if input.Until != "" {
		t, err := api.ParseTime(input.Until)
		if err != nil {
			return Output{}, fmt.Errorf("until time must be in RFC3339 format but got %q", input.Until)
		}
		until = t
	}

	jq, err := CompileQuery(input.JQ)
	if err != nil {
		return Output{}, fmt.Errorf("failed to parse jq query: %w", err)
	}

	records := []any{}
	for _, r := range s.Records() {
		if input.ID != "" && r.ID != input.ID {
			continue
		}
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && r.Timestamp.After(until) {
			continue
		}
		records = append(records, RecordToMap(r))
	}

	return jq.Run(ctx, records)
}

// AddReadOnlyTools adds query_status, query_incidents and query_history tools to the server.
func AddReadOnlyTools(server *mcp.Server, reports ReportSource, history HistorySource) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_status",
		Title:       "Query status",
		Description: "Fetch the latest status of each storefront endpoint.",
		Annotations: &mcp.ToolAnnotations{
			IdempotentHint: true,
			ReadOnlyHint:   true,
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, Output, error) {
		output, err := FetchStatusByJQ(ctx, reports, input)
		return nil, output, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_incidents",
		Title:       "Query incidents",
		Description: "Fetch recent incidents of the storefront endpoints. At most 5 incidents per endpoint are kept.",
		Annotations: &mcp.ToolAnnotations{
			IdempotentHint: true,
			ReadOnlyHint:   true,
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input IncidentsInput) (*mcp.CallToolResult, Output, error) {
		output, err := FetchIncidentsByJQ(ctx, reports, input)
		return nil, output, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_history",
		Title:       "Query history",
		Description: "Fetch check records from the history. Please use jq query to aggregate them instead of fetching every record.",
		Annotations: &mcp.ToolAnnotations{
			IdempotentHint: true,
			ReadOnlyHint:   true,
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, Output, error) {
		output, err := FetchHistoryByJQ(ctx, history, input)
		return nil, output, err
	})
}
