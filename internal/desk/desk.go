package desk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/meetbook/internal/logging"
	"github.com/teemow/meetbook/internal/scheduling"
)

// Desk answers the agent's scheduling requests.
type Desk struct {
	engine *scheduling.Engine
	logger *slog.Logger
}

// New creates a Desk over engine. A nil logger means slog.Default().
func New(engine *scheduling.Engine, logger *slog.Logger) *Desk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desk{engine: engine, logger: logger}
}

// Engine returns the underlying engine.
func (d *Desk) Engine() *scheduling.Engine {
	return d.engine
}

// Meetings returns the meetings booked by this process.
func (d *Desk) Meetings() []scheduling.Meeting {
	return d.engine.Ledger().Meetings()
}

// ScheduleMeeting books a meeting and describes the result. A zero
// durationMinutes books the default length.
func (d *Desk) ScheduleMeeting(ctx context.Context, date, clock, subject string, durationMinutes int) string {
	msg, _ := d.Schedule(ctx, scheduling.BookingRequest{
		Date:            date,
		Time:            clock,
		Subject:         subject,
		DurationMinutes: durationMinutes,
	})
	return msg
}

// Schedule is ScheduleMeeting returning the engine outcome alongside the
// message.
func (d *Desk) Schedule(ctx context.Context, req scheduling.BookingRequest) (string, scheduling.Outcome) {
	out := d.engine.Book(ctx, req)
	return renderOutcome(d.engine.Policy(), req, out), out
}

// GetAvailability lists the free slots of the given length on date.
// Malformed input returns an error wrapping scheduling.ErrValidation; a
// calendar failure wraps scheduling.ErrAvailabilityFetchFailed.
func (d *Desk) GetAvailability(ctx context.Context, date string, durationMinutes int) ([]scheduling.Slot, error) {
	day, length, err := d.parseQuery(date, durationMinutes)
	if err != nil {
		return nil, err
	}
	return d.engine.ListAvailable(ctx, day, length, time.Time{})
}

// GetFormattedAvailability is GetAvailability rendered for the user.
func (d *Desk) GetFormattedAvailability(ctx context.Context, date string, durationMinutes int) string {
	day, length, err := d.parseQuery(date, durationMinutes)
	if err != nil {
		return invalidQuery(date, durationMinutes)
	}

	slots, err := d.engine.ListAvailable(ctx, day, length, time.Time{})
	if err != nil {
		d.logger.Warn("availability lookup failed", logging.Operation("desk.availability"), logging.Err(err))
		return renderFailure("checking availability for "+strings.TrimSpace(date), err)
	}
	return renderSlots(strings.TrimSpace(date), length, slots)
}

// IsTimeSlotAvailable reports whether the slot is free of ledger and remote
// conflicts.
func (d *Desk) IsTimeSlotAvailable(ctx context.Context, date, clock string, durationMinutes int) (bool, error) {
	return d.engine.IsAvailable(ctx, date, clock, durationMinutes)
}

// SuggestSlots proposes start times over the coming days.
func (d *Desk) SuggestSlots(ctx context.Context) ([]time.Time, error) {
	p := d.engine.Policy()
	return d.engine.SuggestNextSlots(ctx, d.engine.Now(), p.SuggestionDays, p.SlotsPerDay)
}

// GetFormattedSuggestions is SuggestSlots rendered for the user.
func (d *Desk) GetFormattedSuggestions(ctx context.Context) string {
	slots, err := d.SuggestSlots(ctx)
	if err != nil {
		d.logger.Warn("suggestion lookup failed", logging.Operation("desk.suggest"), logging.Err(err))
		return renderFailure("looking for open slots", err)
	}
	return renderAlternatives(slots, d.engine.Policy().SuggestionDays)
}

// Greeting greets the session's user and explains what the desk can do.
// Without a known name it asks for one.
func (d *Desk) Greeting(s *Session) string {
	var b strings.Builder
	if name := s.Name(); name != "" {
		fmt.Fprintf(&b, "Hi %s! I can help you with:\n", name)
	} else {
		b.WriteString("Hi there! I can help you with:\n")
	}
	b.WriteString("- Checking which meeting slots are open on a given day\n")
	b.WriteString("- Scheduling a Google Meet with our team to learn more about our services and products\n\n")
	if s.Name() == "" {
		b.WriteString("But first, what's your name?")
	} else {
		b.WriteString("What would you like to do today?")
	}
	return b.String()
}

// SetUserName stores the user's name on the session and acknowledges it.
func (d *Desk) SetUserName(s *Session, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "I didn't catch your name. What should I call you?"
	}
	s.SetName(name)
	d.logger.Debug("user name set", logging.Session(s.ID()), logging.UserHash(name))
	return fmt.Sprintf("Nice to meet you, %s! How can I help you today?", name)
}

func (d *Desk) parseQuery(date string, durationMinutes int) (time.Time, time.Duration, error) {
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%s: %w", scheduling.ReasonInvalidDate, scheduling.ErrValidation)
	}
	if !scheduling.ValidDurationMinutes(durationMinutes) {
		return time.Time{}, 0, fmt.Errorf("%s: %w", scheduling.ReasonInvalidDuration, scheduling.ErrValidation)
	}
	length := time.Duration(durationMinutes) * time.Minute
	if length == 0 {
		length = d.engine.Policy().DefaultDuration
	}
	return day, length, nil
}

func invalidQuery(date string, durationMinutes int) string {
	if !scheduling.ValidDurationMinutes(durationMinutes) {
		return fmt.Sprintf("%d minutes is not a valid meeting length. Please give a positive number of minutes.", durationMinutes)
	}
	return fmt.Sprintf("%q is not a valid date. Please use YYYY-MM-DD.", date)
}
