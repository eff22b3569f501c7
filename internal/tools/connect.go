package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	profilesvc "github.com/topicmux/topicmux/internal/service/profile"
)

func (r *Registry) connectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(
		"connect",
		mcp.WithDescription(
			"Open a session with the backing pub/sub server. All other tools require an active session. "+
				"Connection details can be given inline or by referencing a stored connection profile. "+
				"Reconnecting replaces the current session.",
		),
		mcp.WithString("url", mcp.Description("Server URL, e.g. redis://broker:6379/0. Required unless a profile is given.")),
		mcp.WithString("profile", mcp.Description("Name of a stored connection profile to use as defaults.")),
		mcp.WithString("principal", mcp.Description("Username to authenticate as.")),
		mcp.WithString("password", mcp.Description("Password for the principal.")),
		mcp.WithObject("properties", mcp.Description("Optional session properties (string values), e.g. {\"db\": \"2\"}.")),
	)
	return tool, r.handleConnect
}

func (r *Registry) handleConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callerID := r.callerID(ctx)
	if callerID == "" {
		return mcp.NewToolResultError("could not determine caller session"), nil
	}

	serverURL := req.GetString("url", "")
	principal := req.GetString("principal", "")
	password := req.GetString("password", "")
	properties := stringMapArg(req, "properties")

	// a profile supplies defaults; inline arguments win
	if profileName := req.GetString("profile", ""); profileName != "" {
		if r.profiles == nil {
			return mcp.NewToolResultError("connection profiles are not available on this server"), nil
		}
		p, err := r.profiles.Get(profileName)
		if err != nil {
			if err == profilesvc.ErrProfileNotFound {
				return mcp.NewToolResultError(fmt.Sprintf("connection profile '%s' does not exist", profileName)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to load connection profile: %v", err)), nil
		}
		if serverURL == "" {
			serverURL = p.URL
		}
		if principal == "" {
			principal = p.Principal
		}
		if password == "" {
			pw, err := profilesvc.ResolvePassword(p)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to resolve profile password: %v", err)), nil
			}
			password = pw
		}
		if len(properties) == 0 {
			properties = p.Properties
		}
	}

	if serverURL == "" {
		return mcp.NewToolResultError("either 'url' or 'profile' must be given"), nil
	}

	callCtx, cancel := withSDKTimeout(ctx)
	defer cancel()

	conn, err := r.manager.Connect(callCtx, callerID, principal, password, serverURL, properties)
	r.metrics.RecordToolInvocation(ctx, "connect", err == nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error connecting to server: %v", err)), nil
	}
	r.metrics.RecordSessionOpened(ctx)

	return mcp.NewToolResultText(fmt.Sprintf("Connected to %s (connection id %s)", serverURL, conn.ID())), nil
}

// stringMapArg reads an object argument as a map of strings. Non-string
// values are stringified.
func stringMapArg(req mcp.CallToolRequest, key string) map[string]string {
	args := req.GetArguments()
	raw, ok := args[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	result := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			result[k] = s
		} else {
			result[k] = fmt.Sprintf("%v", v)
		}
	}
	return result
}
