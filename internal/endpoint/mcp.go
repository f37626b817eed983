package endpoint

import (
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/storecheck/storecheck/internal/mcp"
)

// MCPHandler creates an HTTP handler for MCP requests.
func MCPHandler(latest *Latest, s Store) http.Handler {
	server := mcp.NewServer(latest, s)

	return mcpsdk.NewStreamableHTTPHandler(func(req *http.Request) *mcpsdk.Server {
		return server
	}, &mcpsdk.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	})
}
