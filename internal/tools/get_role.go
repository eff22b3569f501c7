package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) getRoleTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"get_role",
		mcp.WithDescription("Fetch the rules attached to a security role on the connected server."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Name of the role to fetch.")),
	)
	return tool, r.handleGetRole
}

func (r *Registry) handleGetRole(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	rules, err := conn.Security().GetRole(callCtx, role)
	r.metrics.RecordToolInvocation(ctx, "get_role", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get role '%s': %v", role, err)), nil
	}

	return jsonResult(rules), nil
}
