package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) pingServerTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"ping_server",
		mcp.WithDescription("Check that the connected server is responsive and report the round-trip time."),
	)
	return tool, r.handlePingServer
}

func (r *Registry) handlePingServer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	rtt, err := conn.Servers().Ping(callCtx)
	r.metrics.RecordToolInvocation(ctx, "ping_server", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to ping server: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Server responded in %s.", rtt)), nil
}
