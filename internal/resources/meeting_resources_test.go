package resources

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetbook/internal/calendar"
	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	engine := scheduling.NewEngine(calendar.NewMemory(), scheduling.DefaultPolicy(),
		scheduling.WithClock(scheduling.NewFixedClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))))
	sc, err := server.NewServerContext(context.Background(), desk.New(engine, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readText(t *testing.T, contents []mcp.ResourceContents) string {
	t.Helper()
	require.Len(t, contents, 1)
	tc, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", tc.MIMEType)
	return tc.Text
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestRegisterMeetingResources(t *testing.T) {
	sc := newTestServerContext(t)
	s := mcpserver.NewMCPServer("meetbook", "test", mcpserver.WithResourceCapabilities(false, false))
	assert.NoError(t, RegisterMeetingResources(s, sc))
}

func TestHandleMeetings(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()

	contents, err := handleMeetings(ctx, readRequest(MeetingsURI), sc)
	require.NoError(t, err)
	var empty meetingsJSON
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents)), &empty))
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Meetings)

	sc.Desk().ScheduleMeeting(ctx, "2026-03-02", "10:00", "Intro", 30)
	sc.Desk().ScheduleMeeting(ctx, "2026-03-02", "09:00", "Kickoff", 0)

	contents, err = handleMeetings(ctx, readRequest(MeetingsURI), sc)
	require.NoError(t, err)
	var got meetingsJSON
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents)), &got))

	require.Equal(t, 2, got.Count)
	assert.Equal(t, "Intro", got.Meetings[0].Subject)
	assert.Equal(t, 30, got.Meetings[0].DurationMinutes)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), got.Meetings[0].Start)
	assert.Contains(t, got.Meetings[0].MeetLink, "https://meet.google.com/")
	assert.Equal(t, "Kickoff", got.Meetings[1].Subject)
	assert.Equal(t, 60, got.Meetings[1].DurationMinutes)
}

func TestHandleSession(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()
	sc.Session(ctx).SetName("Ada")

	contents, err := handleSession(ctx, readRequest(SessionURI), sc)
	require.NoError(t, err)

	var got sessionJSON
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents)), &got))
	assert.Equal(t, server.DefaultSessionID, got.SessionID)
	assert.Equal(t, "Ada", got.UserName)
}
