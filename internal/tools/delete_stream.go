package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) deleteStreamTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"delete_stream",
		mcp.WithDescription("Delete a persistent stream and all its entries from the connected server."),
		mcp.WithString("stream", mcp.Required(), mcp.Description("Stream key to delete.")),
	)
	return tool, r.handleDeleteStream
}

func (r *Registry) handleDeleteStream(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	stream, err := req.RequireString("stream")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	removed, err := conn.Topics().DeleteStream(callCtx, stream)
	r.metrics.RecordToolInvocation(ctx, "delete_stream", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete stream: %v", err)), nil
	}
	if removed == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Stream '%s' does not exist.", stream)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stream '%s' deleted.", stream)), nil
}
