package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) memoryMetricsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"memory_metrics",
		mcp.WithDescription("Fetch the memory usage metrics of the connected server."),
	)
	return tool, r.handleMemoryMetrics
}

func (r *Registry) handleMemoryMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	fields, err := conn.Metrics().Section(callCtx, "memory")
	r.metrics.RecordToolInvocation(ctx, "memory_metrics", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch memory metrics: %v", err)), nil
	}

	return jsonResult(fields), nil
}
