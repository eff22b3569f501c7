package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) serverInfoTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"server_info",
		mcp.WithDescription("Fetch identity and role information about the connected server."),
	)
	return tool, r.handleServerInfo
}

func (r *Registry) handleServerInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	info, err := conn.Servers().Info(callCtx)
	r.metrics.RecordToolInvocation(ctx, "server_info", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch server info: %v", err)), nil
	}

	return jsonResult(info), nil
}
