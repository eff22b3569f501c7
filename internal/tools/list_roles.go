package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) listRolesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"list_roles",
		mcp.WithDescription("List the names of all security roles defined on the connected server."),
	)
	return tool, r.handleListRoles
}

func (r *Registry) handleListRoles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	roles, err := conn.Security().ListRoles(callCtx)
	r.metrics.RecordToolInvocation(ctx, "list_roles", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list roles: %v", err)), nil
	}
	if len(roles) == 0 {
		return mcp.NewToolResultText("No roles are defined on the server."), nil
	}

	return jsonResult(roles), nil
}
