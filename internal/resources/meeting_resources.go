package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
)

const (
	// MeetingsURI is the URI of the booked meetings resource.
	MeetingsURI = "meetbook://meetings"

	// SessionURI is the URI of the caller's session resource.
	SessionURI = "meetbook://session"
)

type meetingJSON struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id,omitempty"`
	Subject         string    `json:"subject"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	MeetLink        string    `json:"meet_link,omitempty"`
	BookedAt        time.Time `json:"booked_at"`
}

type meetingsJSON struct {
	Count    int           `json:"count"`
	Meetings []meetingJSON `json:"meetings"`
}

type sessionJSON struct {
	SessionID string    `json:"session_id"`
	UserName  string    `json:"user_name,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// RegisterMeetingResources registers the meeting and session resources
func RegisterMeetingResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	meetingsResource := mcp.NewResource(
		MeetingsURI,
		"Booked Meetings",
		mcp.WithResourceDescription("Meetings booked through this server since it started, in booking order"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(meetingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleMeetings(ctx, request, sc)
	})

	sessionResource := mcp.NewResource(
		SessionURI,
		"Current Session",
		mcp.WithResourceDescription("The caller's session and the user name given in it"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSession(ctx, request, sc)
	})

	return nil
}

func handleMeetings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	meetings := sc.Desk().Meetings()
	out := meetingsJSON{
		Count:    len(meetings),
		Meetings: make([]meetingJSON, 0, len(meetings)),
	}
	for _, m := range meetings {
		out.Meetings = append(out.Meetings, toMeetingJSON(m))
	}
	return jsonContents(request.Params.URI, out)
}

func handleSession(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	session := sc.Session(ctx)
	return jsonContents(request.Params.URI, sessionJSON{
		SessionID: session.ID(),
		UserName:  session.Name(),
		StartedAt: session.CreatedAt().UTC(),
	})
}

func toMeetingJSON(m scheduling.Meeting) meetingJSON {
	return meetingJSON{
		ID:              m.ID,
		EventID:         m.EventID,
		Subject:         m.Subject,
		Start:           m.Interval.Start,
		End:             m.Interval.End,
		DurationMinutes: m.DurationMinutes,
		MeetLink:        m.ConferenceLink,
		BookedAt:        m.BookedAt,
	}
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
