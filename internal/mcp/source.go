// Package mcp serves the check results to MCP clients with jq queries.
package mcp

import (
	api "github.com/storecheck/storecheck/lib-storecheck"
)

// ReportSource provides the report of the last run.
type ReportSource interface {
	Get() api.Report
}

// HistorySource provides the check history.
type HistorySource interface {
	Records() []api.Record
}
