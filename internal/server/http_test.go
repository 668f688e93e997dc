package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	sc := newTestServerContext(t)
	s := NewHTTPServer(mcpserver.NewMCPServer("meetbook", "test"), sc, "")
	assert.Equal(t, DefaultHTTPAddr, s.Addr())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	sc := newTestServerContext(t)
	s := NewHTTPServer(mcpserver.NewMCPServer("meetbook", "test"), sc, "127.0.0.1:0")

	ready := make(chan struct{})
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.StartWithReadySignal(ready)
	}()

	select {
	case <-ready:
	case err := <-serverErr:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + s.Addr() + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.False(t, s.Health().IsReady())
	assert.ErrorIs(t, <-serverErr, http.ErrServerClosed)
}

func TestSessionHooks_RemoveOnUnregister(t *testing.T) {
	sc := newTestServerContext(t)
	sc.Sessions().Get(context.Background(), "client-1").SetName("Ada")
	require.Equal(t, 1, sc.Sessions().Count())

	hooks := SessionHooks(sc)
	require.Len(t, hooks.OnUnregisterSession, 1)
	hooks.OnUnregisterSession[0](context.Background(), fakeSession{id: "client-1"})

	assert.Equal(t, 0, sc.Sessions().Count())
}

type fakeSession struct{ id string }

func (f fakeSession) Initialize()                                         {}
func (f fakeSession) Initialized() bool                                   { return true }
func (f fakeSession) NotificationChannel() chan<- mcp.JSONRPCNotification { return nil }
func (f fakeSession) SessionID() string                                   { return f.id }
