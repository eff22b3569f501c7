package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) listClientsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"list_clients",
		mcp.WithDescription("List the client connections currently open against the connected server."),
	)
	return tool, r.handleListClients
}

func (r *Registry) handleListClients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	clients, err := conn.Servers().Clients(callCtx)
	r.metrics.RecordToolInvocation(ctx, "list_clients", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list clients: %v", err)), nil
	}

	return jsonResult(clients), nil
}
