package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) disconnectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"disconnect",
		mcp.WithDescription("Close the current session with the backing pub/sub server."),
	)
	return tool, r.handleDisconnect
}

func (r *Registry) handleDisconnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callerID := r.callerID(ctx)
	if callerID == "" {
		return mcp.NewToolResultError("could not determine caller session"), nil
	}

	_, removed := r.manager.Disconnect(callerID)
	r.metrics.RecordToolInvocation(ctx, "disconnect", true)
	if !removed {
		return mcp.NewToolResultText("No active session to disconnect."), nil
	}
	r.metrics.RecordSessionClosed(ctx)

	return mcp.NewToolResultText("Disconnected from the server."), nil
}
