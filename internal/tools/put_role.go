package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) putRoleTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"put_role",
		mcp.WithDescription(
			"Create a security role on the connected server, or replace an existing role's rules. "+
				"Rules are passed through to the server verbatim.",
		),
		mcp.WithString("role", mcp.Required(), mcp.Description("Name of the role to create or update.")),
		mcp.WithArray("rules", mcp.Required(), mcp.Description("Rule strings to attach to the role.")),
	)
	return tool, r.handlePutRole
}

func (r *Registry) handlePutRole(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rules := req.GetStringSlice("rules", nil)
	if len(rules) == 0 {
		return mcp.NewToolResultError("'rules' must be a non-empty list of rule strings"), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	err = conn.Security().PutRole(callCtx, role, rules)
	r.metrics.RecordToolInvocation(ctx, "put_role", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to put role '%s': %v", role, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Role '%s' updated.", role)), nil
}
