package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) listReplicasTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"list_replicas",
		mcp.WithDescription("List the replicas attached to the connected server."),
	)
	return tool, r.handleListReplicas
}

func (r *Registry) handleListReplicas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	replicas, err := conn.Servers().Replicas(callCtx)
	r.metrics.RecordToolInvocation(ctx, "list_replicas", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list replicas: %v", err)), nil
	}
	if len(replicas) == 0 {
		return mcp.NewToolResultText("The server has no attached replicas."), nil
	}

	return jsonResult(replicas), nil
}
