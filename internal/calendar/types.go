package calendar

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/instrumentation"
)

// Conference modes.
const (
	// ConferenceCalendar asks Google Calendar to create the Meet conference
	// with the event.
	ConferenceCalendar = "calendar"

	// ConferenceMeet creates a Meet space first and attaches its link to
	// the event.
	ConferenceMeet = "meet"
)

// Defaults for GoogleConfig.
const (
	DefaultCalendarID = "primary"
	DefaultAccount    = "default"
	DefaultRateLimit  = rate.Limit(5)
	DefaultBurst      = 5
)

// LinkProvider creates a standalone conference link.
type LinkProvider interface {
	MeetingLink(ctx context.Context) (string, error)
}

// GoogleConfig configures a Google calendar client.
type GoogleConfig struct {
	CalendarID string
	Account    string

	OAuth  *oauth2.Config
	Tokens google.TokenProvider

	// RateLimit and Burst bound requests per second to the API.
	RateLimit rate.Limit
	Burst     int

	// Conference selects how meeting links are obtained.
	Conference string

	// Links provides a Meet link when the calendar returns none, and every
	// link in ConferenceMeet mode. Optional.
	Links LinkProvider

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

func (c *GoogleConfig) setDefaults() {
	if c.CalendarID == "" {
		c.CalendarID = DefaultCalendarID
	}
	if c.Account == "" {
		c.Account = DefaultAccount
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.Conference == "" {
		c.Conference = ConferenceCalendar
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
