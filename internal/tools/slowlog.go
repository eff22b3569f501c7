package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) slowlogTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"slowlog",
		mcp.WithDescription("Fetch recent entries from the connected server's slow command log."),
		mcp.WithNumber("count", mcp.Description("Maximum number of entries to return. Defaults to 10.")),
	)
	return tool, r.handleSlowlog
}

func (r *Registry) handleSlowlog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	count := req.GetInt("count", 10)

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	entries, err := conn.Metrics().SlowLog(callCtx, int64(count))
	r.metrics.RecordToolInvocation(ctx, "slowlog", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch slow log: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("The slow log is empty."), nil
	}

	return jsonResult(entries), nil
}
