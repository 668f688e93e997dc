package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/meetbook/internal/config"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/resources"
	"github.com/teemow/meetbook/internal/server"
	"github.com/teemow/meetbook/internal/tools/calendar_tools"
	"github.com/teemow/meetbook/internal/tools/google_tools"
	"github.com/teemow/meetbook/internal/tools/session_tools"
)

const startupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		transport          string
		httpAddr           string
		calendarProvider   string
		metricsEnabled     bool
		metricsAddr        string
		googleClientID     string
		googleClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the scheduling tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with health endpoints

Flags override values from the config file and MEETBOOK_ environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("transport") {
				cfg.Server.Transport = transport
			}
			if flags.Changed("http-addr") {
				cfg.Server.HTTPAddr = httpAddr
			}
			if flags.Changed("calendar") {
				cfg.Calendar.Provider = calendarProvider
			}
			if flags.Changed("metrics-enabled") {
				cfg.Server.MetricsEnabled = metricsEnabled
			}
			if flags.Changed("metrics-addr") {
				cfg.Server.MetricsAddr = metricsAddr
			}
			if flags.Changed("google-client-id") {
				cfg.Google.ClientID = googleClientID
			}
			if flags.Changed("google-client-secret") {
				cfg.Google.ClientSecret = googleClientSecret
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&calendarProvider, "calendar", config.ProviderGoogle, "Calendar provider: google or memory")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Serve Prometheus metrics on a dedicated port (not available with stdio)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret")

	return cmd
}

func runServe(cfg config.Application) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(debugMode, os.Stderr)
	slog.SetDefault(logger)
	stdio := cfg.Server.Transport == config.TransportStdio

	instrConfig := cfg.Instrumentation(version)
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if !stdio && cfg.Server.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Server.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := startAndWait(metricsServer.StartWithReadySignal); err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	app, err := newApplication(cfg, logger, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(shutdownCtx, app.desk,
		server.WithLogger(logger),
		server.WithSessionManager(server.NewSessionManager(cfg.Server.SessionTimeout, logger)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	if app.auth != nil {
		serverContext.SetAuth(app.auth)
	}
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("meetbook", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithHooks(server.SessionHooks(serverContext)),
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		logger.Info("starting meetbook MCP server",
			"transport", cfg.Server.Transport,
			"calendar", cfg.Calendar.Provider,
			"calendar_id", cfg.Calendar.ID)
		return runStreamableHTTPServer(shutdownCtx, server.NewHTTPServer(mcpSrv, serverContext, cfg.Server.HTTPAddr), logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Server.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, httpServer *server.HTTPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		defer close(serverDone)
		if err := httpServer.StartWithReadySignal(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		logger.Info("HTTP server listening", "addr", httpServer.Addr(), "endpoint", server.MCPEndpointPath)
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startAndWait runs start in the background and waits until it signals
// readiness or fails.
func startAndWait(start func(ready chan<- struct{}) error) error {
	ready := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		if err := start(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ready:
		return nil
	case err := <-errc:
		if err == nil {
			err = errors.New("server exited before it was ready")
		}
		return err
	case <-time.After(startupTimeout):
		return errors.New("startup timed out")
	}
}

// registerAllTools registers all MCP tools and resources.
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx)
			},
		},
		{
			name: "Session",
			register: func() error {
				return session_tools.RegisterSessionTools(mcpSrv, ctx)
			},
		},
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
		{
			name: "Meeting Resources",
			register: func() error {
				return resources.RegisterMeetingResources(mcpSrv, ctx)
			},
		},
		{
			name: "Calendar Export",
			register: func() error {
				return resources.RegisterCalendarResource(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
