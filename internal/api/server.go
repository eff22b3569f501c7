// Package api implements the topicmux HTTP server: the management REST API
// for connection profiles plus the MCP endpoint itself.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/topicmux/topicmux/internal/service/profile"
	"github.com/topicmux/topicmux/internal/session"
	"github.com/topicmux/topicmux/internal/telemetry"
	"github.com/topicmux/topicmux/pkg/types"
)

// V0PathPrefix is the URL prefix for all v0 API endpoints.
const V0PathPrefix = "/v0"

// ServerOptions holds the collaborators the HTTP server needs.
type ServerOptions struct {
	MCPServer      *mcpserver.MCPServer
	SessionManager *session.Manager
	ProfileService *profile.Service

	OtelProviders *telemetry.Providers
	Metrics       telemetry.CustomMetrics

	// Version is reported by the status endpoint.
	Version string
}

// Server is the topicmux HTTP server.
type Server struct {
	mcpServer      *mcpserver.MCPServer
	sessionManager *session.Manager
	profileService *profile.Service

	otelProviders *telemetry.Providers
	metrics       telemetry.CustomMetrics
	version       string

	// streamableServer serves MCP requests over streamable HTTP. It is
	// created once and reused across requests.
	streamableServer *mcpserver.StreamableHTTPServer

	router *gin.Engine
}

// NewServer creates the topicmux HTTP server and sets up its routes.
func NewServer(opts *ServerOptions) (*Server, error) {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}

	s := &Server{
		mcpServer:      opts.MCPServer,
		sessionManager: opts.SessionManager,
		profileService: opts.ProfileService,
		otelProviders:  opts.OtelProviders,
		metrics:        metrics,
		version:        opts.Version,
	}
	if s.mcpServer != nil {
		s.streamableServer = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	}

	router, err := s.setupRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	s.router = router

	return s, nil
}

// Router returns the HTTP handler for the server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v0 := router.Group(V0PathPrefix)

	v0.GET("/status", s.statusHandler())

	if s.profileService != nil {
		v0.POST("/profiles", s.upsertProfileHandler())
		v0.GET("/profiles", s.listProfilesHandler())
		v0.GET("/profiles/:name", s.getProfileHandler())
		v0.DELETE("/profiles/:name", s.deleteProfileHandler())
	}

	if s.streamableServer != nil {
		v0.Any("/mcp", s.mcpCallHandler())
	}

	return router, nil
}

func (s *Server) statusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := &types.StatusResponse{Version: s.version}
		if s.sessionManager != nil {
			resp.ActiveSessions = s.sessionManager.Count()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// mcpCallHandler serves MCP requests using the streamable HTTP transport.
func (s *Server) mcpCallHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.streamableServer.ServeHTTP(c.Writer, c.Request)
	}
}
