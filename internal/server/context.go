package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/instrumentation"
)

// DefaultSessionID identifies requests that carry no MCP session, such as
// direct handler calls from tests or the CLI.
const DefaultSessionID = "default"

// AuthSettings let tools run the Google OAuth code exchange.
type AuthSettings struct {
	OAuth   *oauth2.Config
	Tokens  google.TokenProvider
	Account string

	// OnTokenSaved runs after a new token is stored, e.g. to make the
	// calendar client reload its credentials.
	OnTokenSaved func()
}

// ServerContext holds what tool handlers share: the desk, the per-session
// state, and the instrumentation.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	desk     *desk.Desk
	sessions *SessionManager
	logger   *slog.Logger

	mu          sync.RWMutex
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	auth        *AuthSettings
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithSessionManager sets the session manager. Defaults to one with
// DefaultSessionTimeout.
func WithSessionManager(m *SessionManager) Option {
	return func(sc *ServerContext) { sc.sessions = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext creates a server context around d.
func NewServerContext(ctx context.Context, d *desk.Desk, opts ...Option) (*ServerContext, error) {
	if d == nil {
		return nil, errors.New("desk cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		desk:   d,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.logger == nil {
		sc.logger = slog.Default()
	}
	if sc.sessions == nil {
		sc.sessions = NewSessionManager(DefaultSessionTimeout, sc.logger)
	}
	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Desk returns the shared desk.
func (sc *ServerContext) Desk() *desk.Desk {
	return sc.desk
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Sessions returns the session manager.
func (sc *ServerContext) Sessions() *SessionManager {
	return sc.sessions
}

// Session returns the desk session of the MCP session in ctx, creating it
// on first use.
func (sc *ServerContext) Session(ctx context.Context) *desk.Session {
	return sc.sessions.Get(ctx, SessionID(ctx))
}

// SessionID returns the MCP session ID carried by ctx, or DefaultSessionID.
func SessionID(ctx context.Context) string {
	if cs := mcpserver.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		return cs.SessionID()
	}
	return DefaultSessionID
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder and hands it to the session manager.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	sc.metrics = m
	sc.mu.Unlock()
	sc.sessions.SetMetrics(m)
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// Auth returns the OAuth settings, or nil when the calendar needs none.
func (sc *ServerContext) Auth() *AuthSettings {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auth
}

// SetAuth sets the OAuth settings.
func (sc *ServerContext) SetAuth(a *AuthSettings) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auth = a
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and stops session cleanup. It is
// safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.sessions.Stop()
	return nil
}
