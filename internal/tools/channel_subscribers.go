package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (r *Registry) channelSubscribersTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"channel_subscribers",
		mcp.WithDescription("Return the subscriber count for one or more channels on the connected server."),
		mcp.WithArray("channels", mcp.Required(), mcp.Description("Channel names to inspect.")),
	)
	return tool, r.handleChannelSubscribers
}

func (r *Registry) handleChannelSubscribers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conn, failure, ok := r.conn(ctx)
	if !ok {
		return failure, nil
	}

	channels := req.GetStringSlice("channels", nil)
	if len(channels) == 0 {
		return mcp.NewToolResultError("'channels' must be a non-empty list of channel names"), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	counts, err := conn.Topics().Subscribers(callCtx, channels...)
	r.metrics.RecordToolInvocation(ctx, "channel_subscribers", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get subscriber counts: %v", err)), nil
	}

	return jsonResult(counts), nil
}
