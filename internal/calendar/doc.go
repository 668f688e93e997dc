// Package calendar provides the remote calendars meetings are booked
// against.
//
// Google talks to the Google Calendar API. Requests are rate limited, all-day
// entries are widened to whole UTC days, and every inserted event asks for a
// Google Meet conference. Memory keeps events in process and backs tests and
// the "memory" development provider.
//
// Both implement scheduling.Calendar:
//
//	cal := calendar.NewGoogle(calendar.GoogleConfig{
//	    CalendarID: "primary",
//	    Account:    "default",
//	    OAuth:      google.OAuthConfig(creds),
//	    Tokens:     tokens,
//	})
//	engine := scheduling.NewEngine(cal, scheduling.DefaultPolicy())
package calendar
