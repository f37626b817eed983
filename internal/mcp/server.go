package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/storecheck/storecheck/internal/meta"
)

// NewServer creates a read-only MCP server.
func NewServer(reports ReportSource, history HistorySource) *mcp.Server {
	impl := &mcp.Implementation{
		Name:    "storecheck",
		Version: meta.Version,
		Title:   "storecheck",
	}

	opts := &mcp.ServerOptions{
		Instructions: "storecheck checks the health of storefront endpoints. The history can be large, so it is recommended to extract necessary information using jq queries instead of fetching all data at once.",
	}

	server := mcp.NewServer(impl, opts)
	AddReadOnlyTools(server, reports, history)

	return server
}
