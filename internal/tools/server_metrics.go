package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) serverMetricsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"server_metrics",
		mcp.WithDescription(
			"Fetch a metrics section from the connected server, e.g. 'stats', 'cpu', 'clients' or 'replication'. "+
				"Without a section, the server's default sections are returned.",
		),
		mcp.WithString("section", mcp.Description("Metrics section name.")),
	)
	return tool, r.handleServerMetrics
}

func (r *Registry) handleServerMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	section := req.GetString("section", "")

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	fields, err := conn.Metrics().Section(callCtx, section)
	r.metrics.RecordToolInvocation(ctx, "server_metrics", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch metrics: %v", err)), nil
	}

	return jsonResult(fields), nil
}
