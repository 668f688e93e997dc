package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/meetbook/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is where the metrics server listens unless configured.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// Enabled must be set; a disabled config is rejected.
	Enabled bool

	// InstrumentationProvider must be enabled. Its Prometheus exporter
	// registers with the default registry served on /metrics.
	InstrumentationProvider *instrumentation.Provider

	Logger *slog.Logger
}

// MetricsServer serves /metrics on its own listener so that booking
// traffic and scraping never share a port.
type MetricsServer struct {
	addr       string
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// NewMetricsServer validates config and prepares the server.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	switch {
	case config.InstrumentationProvider == nil:
		return nil, errors.New("instrumentation provider is required for metrics server")
	case !config.InstrumentationProvider.Enabled():
		return nil, errors.New("instrumentation provider is not enabled")
	}
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(healthStatusOK))
	})

	return &MetricsServer{addr: config.Addr, handler: mux, logger: config.Logger}, nil
}

// Handler returns the metrics mux.
func (s *MetricsServer) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown and blocks.
func (s *MetricsServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is Start, closing ready once the listener is bound.
// Addr reports the bound address afterwards, which matters for ":0".
func (s *MetricsServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
		WriteTimeout:      metricsWriteTimeout,
		IdleTimeout:       metricsIdleTimeout,
	}
	if ready != nil {
		close(ready)
	}

	s.logger.Info("serving metrics", "addr", s.addr)
	return s.httpServer.Serve(ln)
}

// Shutdown stops a started server. It is a no-op otherwise.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("stopping metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
