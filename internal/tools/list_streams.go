package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) listStreamsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"list_streams",
		mcp.WithDescription("List the persistent streams on the connected server, optionally filtered by a glob pattern."),
		mcp.WithString("pattern", mcp.Description("Glob pattern to filter stream keys. Defaults to all.")),
	)
	return tool, r.handleListStreams
}

func (r *Registry) handleListStreams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	pattern := req.GetString("pattern", "")

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	streams, err := conn.Topics().ListStreams(callCtx, pattern)
	r.metrics.RecordToolInvocation(ctx, "list_streams", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list streams: %v", err)), nil
	}
	if len(streams) == 0 {
		return mcp.NewToolResultText("No streams found."), nil
	}

	return jsonResult(streams), nil
}
