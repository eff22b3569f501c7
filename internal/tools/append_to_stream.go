package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) appendToStreamTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"append_to_stream",
		mcp.WithDescription(
			"Append an entry to a persistent stream on the connected server. "+
				"The stream is created if it does not exist.",
		),
		mcp.WithString("stream", mcp.Required(), mcp.Description("Stream key to append to.")),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Field/value pairs of the entry.")),
	)
	return tool, r.handleAppendToStream
}

func (r *Registry) handleAppendToStream(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	stream, err := req.RequireString("stream")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, ok := req.GetArguments()["values"].(map[string]any)
	if !ok || len(values) == 0 {
		return mcp.NewToolResultError("'values' must be a non-empty object"), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	entryID, err := conn.Topics().AppendToStream(callCtx, stream, values)
	r.metrics.RecordToolInvocation(ctx, "append_to_stream", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to append to stream: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Appended entry %s to stream '%s'.", entryID, stream)), nil
}
