package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) publishMessageTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"publish_message",
		mcp.WithDescription("Publish a message to a channel on the connected pub/sub server."),
		mcp.WithString("channel", mcp.Required(), mcp.Description("Channel to publish to.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message payload.")),
	)
	return tool, r.handlePublishMessage
}

func (r *Registry) handlePublishMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	channel, err := req.RequireString("channel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	receivers, err := conn.Topics().Publish(callCtx, channel, message)
	r.metrics.RecordToolInvocation(ctx, "publish_message", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to publish message: %v", err)), nil
	}

	return mcp.NewToolResultText(
		fmt.Sprintf("Message published to channel '%s', delivered to %d subscriber(s).", channel, receivers),
	), nil
}
