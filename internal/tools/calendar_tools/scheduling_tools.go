package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
	"github.com/teemow/meetbook/internal/tools/common"
)

// RegisterSchedulingTools registers the booking tool with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	scheduleMeetingTool := mcp.NewTool("schedule_meeting",
		mcp.WithDescription("Schedule a Google Meet on the team calendar. Rejects past times, times between 00:00 and 06:00 UTC, and slots that are already booked; rejections list open alternatives."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Meeting date in YYYY-MM-DD format (UTC)"),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Start time in HH:MM (24-hour) or H:MM AM/PM format (UTC)"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Meeting subject"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Meeting length in minutes (default: 60)"),
		),
	)

	s.AddTool(scheduleMeetingTool, common.InstrumentedToolHandler("schedule_meeting", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleScheduleMeeting(ctx, request, sc)
		}))

	return nil
}

func handleScheduleMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req := scheduling.BookingRequest{
		Date:            request.GetString("date", ""),
		Time:            request.GetString("time", ""),
		Subject:         request.GetString("subject", ""),
		DurationMinutes: request.GetInt("duration_minutes", 0),
	}

	msg, out := sc.Desk().Schedule(ctx, req)
	common.RecordOutcome(ctx, out.Status.String(), string(out.Reason))

	if out.Status == scheduling.StatusFailed {
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(msg), nil
}
