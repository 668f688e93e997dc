// Package resources provides the MCP resources of the booking server.
//
//   - meetbook://meetings lists the meetings booked by this process as JSON
//   - meetbook://meetings.ics exports the same meetings as iCalendar
//   - meetbook://session describes the caller's session
package resources
