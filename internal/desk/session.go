package desk

import (
	"strings"
	"sync"
	"time"
)

// Session is the state of one conversation. It is safe for concurrent use.
type Session struct {
	id      string
	created time.Time

	mu   sync.RWMutex
	name string
}

// NewSession creates an anonymous session.
func NewSession(id string) *Session {
	return &Session{id: id, created: time.Now()}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// Name returns the user's name, or "" if unknown.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName stores the user's name, trimmed.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = strings.TrimSpace(name)
}
