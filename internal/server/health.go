package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoToken      = "no token"
)

// HealthChecker serves the liveness and readiness probes of the HTTP
// transport.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startedAt time.Time
}

// NewHealthChecker returns a checker that starts out ready. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startedAt: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness, e.g. while draining on shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the readiness flag.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status         string            `json:"status"`
	Checks         map[string]string `json:"checks"`
	Uptime         string            `json:"uptime"`
	Sessions       int               `json:"sessions"`
	MeetingsBooked int               `json:"meetings_booked"`
}

// checks evaluates the readiness checks. The calendar_auth check is
// informational: a missing Google token still lets clients reach the auth
// tools, so it does not fail readiness.
func (h *HealthChecker) checks() (map[string]string, string) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		status = healthStatusShuttingDown
	}
	if h.sc != nil {
		if auth := h.sc.Auth(); auth != nil {
			checks["calendar_auth"] = healthStatusOK
			if auth.Tokens == nil || !auth.Tokens.HasTokenForAccount(auth.Account) {
				checks["calendar_auth"] = healthStatusNoToken
			}
		}
	}
	return checks, status
}

// LivenessHandler serves /healthz. It only reports that the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, status := h.checks()
		writeHealth(w, statusCode(status), HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed with the readiness checks,
// uptime, live sessions and the number of meetings booked.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, status := h.checks()
		resp := DetailedHealthResponse{
			Status: status,
			Checks: checks,
			Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			resp.Sessions = h.sc.Sessions().Count()
			resp.MeetingsBooked = h.sc.Desk().Engine().Ledger().Len()
		}
		writeHealth(w, statusCode(status), resp)
	})
}

// RegisterHealthEndpoints mounts the probes on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
