package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetbook/internal/calendar"
	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/scheduling"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	engine := scheduling.NewEngine(calendar.NewMemory(), scheduling.DefaultPolicy(),
		scheduling.WithClock(scheduling.NewFixedClock(now)))
	sc, err := NewServerContext(context.Background(), desk.New(engine, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_NilDesk(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	assert.Error(t, err)
}

func TestServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t)

	assert.NotNil(t, sc.Desk())
	assert.NotNil(t, sc.Logger())
	assert.NotNil(t, sc.Sessions())
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())
	assert.Nil(t, sc.Auth())
	assert.False(t, sc.IsShutdown())
}

func TestServerContext_SessionDefaultsToSharedID(t *testing.T) {
	sc := newTestServerContext(t)

	s1 := sc.Session(context.Background())
	s2 := sc.Session(context.Background())
	assert.Same(t, s1, s2)
	assert.Equal(t, DefaultSessionID, s1.ID())
	assert.Equal(t, DefaultSessionID, SessionID(context.Background()))
}

func TestServerContext_Setters(t *testing.T) {
	sc := newTestServerContext(t)

	m := &instrumentation.Metrics{}
	sc.SetMetrics(m)
	assert.Same(t, m, sc.Metrics())

	al := instrumentation.NewAuditLogger(nil)
	sc.SetAuditLogger(al)
	assert.Same(t, al, sc.AuditLogger())

	auth := &AuthSettings{Account: "default"}
	sc.SetAuth(auth)
	assert.Same(t, auth, sc.Auth())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// A second call is a no-op.
	assert.NoError(t, sc.Shutdown())
}
