package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) deleteRoleTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"delete_role",
		mcp.WithDescription("Delete a security role from the connected server."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Name of the role to delete.")),
	)
	return tool, r.handleDeleteRole
}

func (r *Registry) handleDeleteRole(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	removed, err := conn.Security().DeleteRole(callCtx, role)
	r.metrics.RecordToolInvocation(ctx, "delete_role", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete role '%s': %v", role, err)), nil
	}
	if removed == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Role '%s' does not exist.", role)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Role '%s' deleted.", role)), nil
}
