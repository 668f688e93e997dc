package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultHTTPAddr is the default listen address for streamable-http.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the MCP streamable HTTP endpoint is mounted.
	MCPEndpointPath = "/mcp"
)

// HTTPServer serves MCP over streamable HTTP next to the health probes.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	health     *HealthChecker
	httpServer *http.Server
	addr       string
	logger     *slog.Logger
}

// NewHTTPServer creates a streamable HTTP server for mcpServer. The health
// checker reports on sc.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, addr string) *HTTPServer {
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	logger := slog.Default()
	if sc != nil {
		logger = sc.Logger()
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		health:    NewHealthChecker(sc),
		addr:      addr,
		logger:    logger,
	}
}

// Health returns the health checker behind /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the HTTP handler with the MCP and health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)
	mux.Handle(MCPEndpointPath, streamable)
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start serves until Shutdown. It blocks.
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start, closing ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()
	if ready != nil {
		close(ready)
	}

	s.logger.Info("starting streamable HTTP server", "addr", s.addr, "endpoint", MCPEndpointPath)
	return s.httpServer.Serve(ln)
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address, resolved once started.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// SessionHooks returns MCP hooks that drop desk sessions when their client
// disconnects.
func SessionHooks(sc *ServerContext) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Sessions().Remove(ctx, session.SessionID())
	})
	return hooks
}
