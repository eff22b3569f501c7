// Package tools implements the MCP tool adapters exposed by topicmux.
// Each tool lives in its own file and follows the same shape: resolve the
// caller's backing-server session, perform exactly one SDK call under a
// fixed timeout, and format the outcome as a text or JSON result.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/topicmux/topicmux/internal/broker"
	"github.com/topicmux/topicmux/internal/service/profile"
	"github.com/topicmux/topicmux/internal/session"
	"github.com/topicmux/topicmux/internal/telemetry"
)

// sdkCallTimeout bounds every SDK call made on behalf of a tool invocation.
const sdkCallTimeout = 10 * time.Second

// noActiveSessionMsg is the standardized failure text returned when a tool is
// invoked before connect.
const noActiveSessionMsg = "no active session, use the connect tool first"

// RegistryConfig holds the collaborators the tool adapters need.
type RegistryConfig struct {
	SessionManager *session.Manager

	// ProfileService is optional; when nil the connect tool only accepts
	// inline connection details.
	ProfileService *profile.Service

	Metrics telemetry.CustomMetrics
}

// Registry owns the tool adapters and registers them on an MCP server.
type Registry struct {
	manager  *session.Manager
	profiles *profile.Service
	metrics  telemetry.CustomMetrics

	// callerID resolves the stable MCP session id for a request.
	// Overridable in tests.
	callerID func(ctx context.Context) string
}

// NewRegistry creates a tool registry.
func NewRegistry(cfg *RegistryConfig) *Registry {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}
	return &Registry{
		manager:  cfg.SessionManager,
		profiles: cfg.ProfileService,
		metrics:  metrics,
		callerID: callerIDFromContext,
	}
}

// RegisterAll adds every topicmux tool to the given MCP server.
func (r *Registry) RegisterAll(s *server.MCPServer) {
	// session tools
	s.AddTool(r.connectTool())
	s.AddTool(r.disconnectTool())
	s.AddTool(r.sessionStatusTool())

	// topic tools
	s.AddTool(r.publishMessageTool())
	s.AddTool(r.appendToStreamTool())
	s.AddTool(r.readStreamTool())
	s.AddTool(r.listChannelsTool())
	s.AddTool(r.listStreamsTool())
	s.AddTool(r.deleteStreamTool())
	s.AddTool(r.channelSubscribersTool())

	// metric tools
	s.AddTool(r.serverMetricsTool())
	s.AddTool(r.memoryMetricsTool())
	s.AddTool(r.slowlogTool())

	// security tools
	s.AddTool(r.listRolesTool())
	s.AddTool(r.getRoleTool())
	s.AddTool(r.putRoleTool())
	s.AddTool(r.deleteRoleTool())

	// server tools
	s.AddTool(r.serverInfoTool())
	s.AddTool(r.listReplicasTool())
	s.AddTool(r.listClientsTool())
	s.AddTool(r.pingServerTool())
}

// callerIDFromContext extracts the stable MCP client session id assigned by
// the transport layer.
func callerIDFromContext(ctx context.Context) string {
	sess := server.ClientSessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.SessionID()
}

// conn resolves the caller's live backing-server connection. When no session
// exists, it returns a standardized failure result and ok=false; the tool
// must return that result without touching the backing server.
func (r *Registry) conn(ctx context.Context) (broker.Conn, *mcp.CallToolResult, bool) {
	callerID := r.callerID(ctx)
	if callerID == "" {
		return nil, mcp.NewToolResultError("could not determine caller session"), false
	}
	conn, ok := r.manager.Get(callerID)
	if !ok {
		return nil, mcp.NewToolResultError(noActiveSessionMsg), false
	}
	return conn, nil, true
}

// withSDKTimeout derives the bounded context used for one SDK call.
func withSDKTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, sdkCallTimeout)
}

// jsonResult marshals v into an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
