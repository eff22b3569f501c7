package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) listChannelsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"list_channels",
		mcp.WithDescription("List the active channels on the connected server, optionally filtered by a glob pattern."),
		mcp.WithString("pattern", mcp.Description("Glob pattern to filter channel names, e.g. 'orders.*'. Defaults to all.")),
	)
	return tool, r.handleListChannels
}

func (r *Registry) handleListChannels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	pattern := req.GetString("pattern", "")

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	channels, err := conn.Topics().ListChannels(callCtx, pattern)
	r.metrics.RecordToolInvocation(ctx, "list_channels", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list channels: %v", err)), nil
	}
	if len(channels) == 0 {
		return mcp.NewToolResultText("No active channels."), nil
	}

	return jsonResult(channels), nil
}
