// Package server holds what the MCP tool handlers share and the HTTP
// surfaces around them.
//
// # Key Components
//
// ServerContext owns the shared desk, the per-session state and the
// instrumentation. Tool handlers reach the caller's desk.Session through
// ServerContext.Session, which keys sessions by the MCP session ID.
//
// SessionManager creates sessions on first use and drops them when the
// client disconnects (see SessionHooks) or after an idle timeout.
//
// HTTPServer serves the streamable HTTP transport on /mcp together with
// the /healthz and /readyz probes. MetricsServer exposes Prometheus
// metrics on a separate port.
package server
