package desk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/meetbook/internal/scheduling"
)

const (
	noLink          = "No Meet link"
	reauthHint      = "Please re-authenticate with `meetbook auth`."
	suggestedLayout = "2006-01-02 15:04 UTC"
)

// renderOutcome turns a booking outcome into the reply shown to the user.
func renderOutcome(p scheduling.Policy, req scheduling.BookingRequest, out scheduling.Outcome) string {
	switch out.Status {
	case scheduling.StatusConfirmed:
		return renderConfirmed(out.Meeting)
	case scheduling.StatusRejected:
		msg := renderRejection(p, req, out)
		if out.Reason.IsValidation() {
			return msg
		}
		return msg + "\n\n" + renderAlternatives(out.Alternatives, p.SuggestionDays)
	default:
		return renderFailure("scheduling the meeting", out.Err)
	}
}

func renderConfirmed(m scheduling.Meeting) string {
	link := m.ConferenceLink
	if link == "" {
		link = noLink
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting '%s' scheduled!\n", m.Subject)
	fmt.Fprintf(&b, "When: %s (%d min)\n", m.Interval.Start.UTC().Format(suggestedLayout), m.DurationMinutes)
	fmt.Fprintf(&b, "Meet link: %s", link)
	return b.String()
}

func renderRejection(p scheduling.Policy, req scheduling.BookingRequest, out scheduling.Outcome) string {
	switch out.Reason {
	case scheduling.ReasonMissingFields:
		return "Please provide the date (YYYY-MM-DD), time (HH:MM), and subject to schedule a meeting."
	case scheduling.ReasonUnparsedTime:
		return fmt.Sprintf("I could not understand the time %q. Please use HH:MM (24-hour, e.g. 14:30) or H:MM AM/PM (e.g. 2:30 PM).", req.Time)
	case scheduling.ReasonInvalidDate:
		return fmt.Sprintf("%q is not a valid date. Please use YYYY-MM-DD.", req.Date)
	case scheduling.ReasonInvalidDuration:
		return fmt.Sprintf("%d minutes is not a valid meeting length. Please give a positive number of minutes.", req.DurationMinutes)
	case scheduling.ReasonPastTime:
		return "Please use a valid date and time. Meetings cannot be scheduled in the past."
	case scheduling.ReasonRestrictedHours:
		return fmt.Sprintf("Meetings cannot be scheduled between %s and %s UTC.", clock(p.RestrictedStart), clock(p.RestrictedEnd))
	case scheduling.ReasonLocalConflict, scheduling.ReasonRemoteConflict:
		return fmt.Sprintf("That time slot is already booked (%s).", out.Conflict)
	default:
		return fmt.Sprintf("The meeting could not be scheduled (%s).", out.Reason)
	}
}

func renderAlternatives(alts []time.Time, days int) string {
	if len(alts) == 0 {
		return fmt.Sprintf("I could not find open slots in the next %d days. Please suggest another time.", days)
	}
	var b strings.Builder
	b.WriteString("Here are some available slots you can pick:")
	for _, t := range alts {
		b.WriteString("\n- ")
		b.WriteString(t.UTC().Format(suggestedLayout))
	}
	return b.String()
}

// renderFailure explains an infrastructure failure. Auth failures get a
// remediation hint; timeouts warn that the outcome is unknown.
func renderFailure(action string, err error) string {
	switch {
	case errors.Is(err, scheduling.ErrAuthFailure):
		return "Calendar authentication error: credentials expired or revoked. " + reauthHint
	case errors.Is(err, scheduling.ErrCalendarTimeout):
		return fmt.Sprintf("The calendar did not respond in time while %s. Please check the calendar before trying again.", action)
	default:
		return fmt.Sprintf("Error %s: %v", action, err)
	}
}

func renderSlots(date string, d time.Duration, slots []scheduling.Slot) string {
	minutes := int(d / time.Minute)
	if len(slots) == 0 {
		return fmt.Sprintf("No available %d minute slots on %s (UTC).", minutes, date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Available %d minute slots on %s (UTC):", minutes, date)
	for _, s := range slots {
		b.WriteString("\n- ")
		b.WriteString(s.String())
	}
	return b.String()
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
