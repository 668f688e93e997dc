package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
	"github.com/teemow/meetbook/internal/tools/common"
)

// slotJSON is one open slot in tool output.
type slotJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityJSON struct {
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Slots           []slotJSON `json:"slots"`
}

type slotCheckJSON struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Available       bool   `json:"available"`
}

// RegisterAvailabilityTools registers the read-only availability tools with
// the MCP server
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	dateParam := mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Date in YYYY-MM-DD format (UTC)"),
	)
	durationParam := mcp.WithNumber("duration_minutes",
		mcp.Description("Slot length in minutes (default: 60)"),
	)

	getAvailabilityTool := mcp.NewTool("get_availability",
		mcp.WithDescription("List the open meeting slots on a day as JSON. Slots are inside business hours, start on the half hour and exclude past times."),
		dateParam,
		durationParam,
	)
	s.AddTool(getAvailabilityTool, common.InstrumentedToolHandler("get_availability", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAvailability(ctx, request, sc)
		}))

	getFormattedAvailabilityTool := mcp.NewTool("get_formatted_availability",
		mcp.WithDescription("List the open meeting slots on a day as text ready to show the user"),
		dateParam,
		durationParam,
	)
	s.AddTool(getFormattedAvailabilityTool, common.InstrumentedToolHandler("get_formatted_availability", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFormattedAvailability(ctx, request, sc)
		}))

	isTimeSlotAvailableTool := mcp.NewTool("is_time_slot_available",
		mcp.WithDescription("Check whether a slot is free of booked meetings and calendar events"),
		dateParam,
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Start time in HH:MM (24-hour) or H:MM AM/PM format (UTC)"),
		),
		durationParam,
	)
	s.AddTool(isTimeSlotAvailableTool, common.InstrumentedToolHandler("is_time_slot_available", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleIsTimeSlotAvailable(ctx, request, sc)
		}))

	suggestSlotsTool := mcp.NewTool("suggest_slots",
		mcp.WithDescription("Suggest open meeting times over the next few days"),
	)
	s.AddTool(suggestSlotsTool, common.InstrumentedToolHandler("suggest_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSuggestSlots(ctx, request, sc)
		}))

	return nil
}

func handleGetAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date is required"), nil
	}
	minutes := request.GetInt("duration_minutes", 0)

	slots, err := sc.Desk().GetAvailability(ctx, date, minutes)
	if err != nil {
		return mcp.NewToolResultError(queryError("get availability", err)), nil
	}

	out := availabilityJSON{
		Date:            date,
		DurationMinutes: minutes,
		Slots:           make([]slotJSON, 0, len(slots)),
	}
	if out.DurationMinutes == 0 {
		out.DurationMinutes = int(sc.Desk().Engine().Policy().DefaultDuration.Minutes())
	}
	for _, slot := range slots {
		out.Slots = append(out.Slots, slotJSON{
			Start: slot.Start.Format("15:04"),
			End:   slot.End.Format("15:04"),
		})
	}
	return jsonResult(out)
}

func handleGetFormattedAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date is required"), nil
	}
	return mcp.NewToolResultText(sc.Desk().GetFormattedAvailability(ctx, date, request.GetInt("duration_minutes", 0))), nil
}

func handleIsTimeSlotAvailable(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date is required"), nil
	}
	clock, err := request.RequireString("time")
	if err != nil {
		return mcp.NewToolResultError("time is required"), nil
	}
	minutes := request.GetInt("duration_minutes", 0)

	free, err := sc.Desk().IsTimeSlotAvailable(ctx, date, clock, minutes)
	if err != nil {
		return mcp.NewToolResultError(queryError("check the time slot", err)), nil
	}

	if minutes == 0 {
		minutes = int(sc.Desk().Engine().Policy().DefaultDuration.Minutes())
	}
	return jsonResult(slotCheckJSON{
		Date:            date,
		Time:            clock,
		DurationMinutes: minutes,
		Available:       free,
	})
}

func handleSuggestSlots(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(sc.Desk().GetFormattedSuggestions(ctx)), nil
}

// queryError phrases an availability error for the agent.
func queryError(action string, err error) string {
	switch {
	case errors.Is(err, scheduling.ErrValidation):
		return fmt.Sprintf("Invalid request: %v. Use a YYYY-MM-DD date, an HH:MM or H:MM AM/PM time and a positive duration.", err)
	case errors.Is(err, scheduling.ErrAuthFailure):
		return "Calendar authentication error: credentials expired or revoked. Please re-authenticate with `meetbook auth`."
	default:
		return fmt.Sprintf("Failed to %s: %v", action, err)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
