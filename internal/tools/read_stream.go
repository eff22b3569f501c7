package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) readStreamTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"read_stream",
		mcp.WithDescription("Read entries from a persistent stream on the connected server."),
		mcp.WithString("stream", mcp.Required(), mcp.Description("Stream key to read from.")),
		mcp.WithString("start_id", mcp.Description("Entry id to start from. Defaults to the beginning.")),
		mcp.WithNumber("count", mcp.Description("Maximum number of entries to return. Defaults to 10.")),
	)
	return tool, r.handleReadStream
}

func (r *Registry) handleReadStream(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	stream, err := req.RequireString("stream")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startID := req.GetString("start_id", "")
	count := req.GetInt("count", 10)

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	entries, err := conn.Topics().ReadStream(callCtx, stream, startID, int64(count))
	r.metrics.RecordToolInvocation(ctx, "read_stream", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read stream: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Stream '%s' has no entries in the requested range.", stream)), nil
	}

	return jsonResult(entries), nil
}
