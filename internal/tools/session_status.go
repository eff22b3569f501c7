package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) sessionStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"session_status",
		mcp.WithDescription("Report whether this caller has an active session with the backing server."),
	)
	return tool, r.handleSessionStatus
}

func (r *Registry) handleSessionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callerID := r.callerID(ctx)
	if callerID == "" {
		return mcp.NewToolResultError("could not determine caller session"), nil
	}

	conn, ok := r.manager.Get(callerID)
	r.metrics.RecordToolInvocation(ctx, "session_status", true)
	if !ok {
		return mcp.NewToolResultText("No active session."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session active (connection id %s).", conn.ID())), nil
}
