package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
)

const (
	// CalendarURI is the URI of the booked meetings as an iCalendar feed.
	CalendarURI = "meetbook://meetings.ics"

	calendarMIMEType = "text/calendar"
	productID        = "-//teemow//meetbook//EN"
)

// RegisterCalendarResource registers the iCalendar export of booked meetings.
func RegisterCalendarResource(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	calendarResource := mcp.NewResource(
		CalendarURI,
		"Booked Meetings (iCalendar)",
		mcp.WithResourceDescription("Meetings booked through this server as an iCalendar feed for import into a calendar client"),
		mcp.WithMIMEType(calendarMIMEType),
	)
	s.AddResource(calendarResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := EncodeMeetings(sc.Desk().Meetings(), time.Now())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			&mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: calendarMIMEType,
				Text:     string(data),
			},
		}, nil
	})
	return nil
}

// ErrNoMeetings is returned by EncodeMeetings for an empty ledger. An
// iCalendar object needs at least one component.
var ErrNoMeetings = errors.New("no meetings booked yet")

// EncodeMeetings renders meetings as a VCALENDAR with one VEVENT each.
// stamp becomes every event's DTSTAMP.
func EncodeMeetings(meetings []scheduling.Meeting, stamp time.Time) ([]byte, error) {
	if len(meetings) == 0 {
		return nil, ErrNoMeetings
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, m := range meetings {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, m.ID+"@meetbook")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, m.Interval.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, m.Interval.End.UTC())
		event.Props.SetText(ical.PropSummary, m.Subject)
		if m.ConferenceLink != "" {
			event.Props.SetText(ical.PropLocation, m.ConferenceLink)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode meetings calendar: %w", err)
	}
	return buf.Bytes(), nil
}
