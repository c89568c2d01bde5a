package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/gcalphotos/gcalphotos/internal/instrumentation"
)

// RegisterTools registers every tool in the router's catalog with the MCP
// server. Handlers funnel through the router's Dispatch; the MCP layer only
// converts envelopes and records metrics.
func RegisterTools(s *mcpserver.MCPServer, sc *ServerContext) error {
	for _, def := range sc.Router().Registry().All() {
		s.AddTool(def.MCPTool(), dispatchHandler(def.Name, sc))
	}

	return nil
}

// dispatchHandler wraps the router dispatch for one tool, recording
// invocation metrics when a recorder is installed.
func dispatchHandler(toolName string, sc *ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		resp := sc.Router().Dispatch(ctx, toolName, request.GetArguments())

		if metrics := sc.Metrics(); metrics != nil {
			status := instrumentation.StatusSuccess
			if resp.IsError {
				status = instrumentation.StatusError
			}
			metrics.RecordToolInvocation(ctx, toolName, status, time.Since(start))
		}

		if resp.IsError {
			return mcp.NewToolResultError(resp.Text), nil
		}
		return mcp.NewToolResultText(resp.Text), nil
	}
}
