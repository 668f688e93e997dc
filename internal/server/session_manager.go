package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/logging"
)

const (
	// DefaultSessionTimeout is how long an idle session is kept.
	DefaultSessionTimeout = 30 * time.Minute

	cleanupInterval = time.Minute
)

type sessionInfo struct {
	session    *desk.Session
	lastAccess time.Time
}

// SessionManager maps MCP session IDs to desk sessions. Sessions are
// created on first use and dropped when the client disconnects or after
// the idle timeout.
type SessionManager struct {
	sessions       map[string]*sessionInfo
	mu             sync.Mutex
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics

	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	stopOnce      sync.Once
}

// NewSessionManager creates a manager and starts its cleanup loop. A
// non-positive timeout means DefaultSessionTimeout.
func NewSessionManager(timeout time.Duration, logger *slog.Logger) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionManager{
		sessions:       make(map[string]*sessionInfo),
		sessionTimeout: timeout,
		logger:         logger,
		cleanupTicker:  time.NewTicker(cleanupInterval),
		cleanupDone:    make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// SetMetrics sets the recorder for the active sessions gauge.
func (m *SessionManager) SetMetrics(metrics *instrumentation.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// Get returns the session for id, creating it if needed.
func (m *SessionManager) Get(ctx context.Context, id string) *desk.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[id]; ok {
		info.lastAccess = time.Now()
		return info.session
	}

	s := desk.NewSession(id)
	m.sessions[id] = &sessionInfo{session: s, lastAccess: time.Now()}
	m.metrics.IncrementActiveSessions(ctx)
	m.logger.Debug("session started", logging.Session(id))
	return s
}

// Remove drops the session for id.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return
	}
	delete(m.sessions, id)
	m.metrics.DecrementActiveSessions(ctx)
	m.logger.Debug("session ended", logging.Session(id))
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// expire removes sessions idle since before now minus the timeout.
func (m *SessionManager) expire(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for id, info := range m.sessions {
		if now.Sub(info.lastAccess) > m.sessionTimeout {
			delete(m.sessions, id)
			m.metrics.DecrementActiveSessions(context.Background())
			expired++
		}
	}
	return expired
}

func (m *SessionManager) cleanupLoop() {
	for {
		select {
		case now := <-m.cleanupTicker.C:
			if n := m.expire(now); n > 0 {
				m.logger.Info("cleaned up expired sessions", "count", n)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup loop.
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}
