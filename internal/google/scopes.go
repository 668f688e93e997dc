package google

import (
	calendar "google.golang.org/api/calendar/v3"
	meet "google.golang.org/api/meet/v2"
)

// Scopes are the OAuth scopes meetbook requests: read and write events on
// the booking calendar, and create Meet spaces for the conference link
// fallback.
var Scopes = []string{
	calendar.CalendarEventsScope,
	meet.MeetingsSpaceCreatedScope,
}
