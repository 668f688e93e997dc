package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/logging"
)

// BookingRequest is a request to book one meeting. Date is "YYYY-MM-DD",
// Time is "HH:MM" or "H:MM AM/PM" in UTC. A zero DurationMinutes means the
// policy default; a negative one is rejected.
type BookingRequest struct {
	Date            string
	Time            string
	Subject         string
	DurationMinutes int
}

// Status is the kind of a booking Outcome.
type Status int

const (
	StatusConfirmed Status = iota + 1
	StatusRejected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of Book.
//
// Confirmed outcomes carry Meeting. Rejected outcomes carry Reason, the
// Conflict window for conflict reasons, and Alternatives for every reason
// except form validation. Failed outcomes carry Err, which wraps
// ErrAuthFailure, ErrCalendarTimeout or ErrRemoteFailure.
type Outcome struct {
	Status       Status
	Requested    Interval
	Meeting      Meeting
	Reason       Reason
	Conflict     Interval
	Alternatives []time.Time
	Err          error
}

// Book validates req and, if the slot is free, creates the meeting in the
// remote calendar and records it in the ledger.
//
// Checks run in order and stop at the first failure: required fields, time
// format, date and duration, past start, restricted hours, ledger conflict,
// remote conflict (queried with the policy's search margin). Form checks do
// no calendar I/O. The ledger check, remote check, insert and ledger record
// run under the engine's booking lock. Once the insert has been issued the
// engine does not roll it back.
func (e *Engine) Book(ctx context.Context, req BookingRequest) Outcome {
	began := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "booking.book",
		attribute.Int(instrumentation.SpanAttrDuration, req.DurationMinutes))
	defer span.End()

	out := e.book(ctx, req)

	span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, out.Status.String()))
	if out.Reason != "" {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrReason, string(out.Reason)))
	}
	e.metrics.RecordBooking(ctx, out.Status.String(), string(out.Reason), time.Since(began))

	logger := e.log("booking.book")
	switch out.Status {
	case StatusConfirmed:
		instrumentation.SetSpanSuccess(span)
		logger.Info("meeting confirmed",
			logging.MeetingID(out.Meeting.ID),
			logging.Slot(out.Meeting.Interval.Start, out.Meeting.Interval.End),
			logging.Duration(time.Since(began)))
	case StatusRejected:
		logger.Info("booking rejected",
			logging.Reason(string(out.Reason)),
			logging.Slot(out.Requested.Start, out.Requested.End))
	case StatusFailed:
		instrumentation.SetSpanError(span, out.Err)
		logger.Error("booking failed",
			logging.Slot(out.Requested.Start, out.Requested.End),
			logging.Err(out.Err))
	}

	return out
}

func (e *Engine) book(ctx context.Context, req BookingRequest) Outcome {
	iv, reason := e.parseRequest(req)
	if reason != "" {
		return Outcome{Status: StatusRejected, Requested: iv, Reason: reason}
	}

	now := e.clock.Now()
	var out Outcome
	switch {
	case !iv.Start.After(now):
		out = Outcome{Status: StatusRejected, Requested: iv, Reason: ReasonPastTime}
	case e.policy.Restricted(iv.Start):
		out = Outcome{Status: StatusRejected, Requested: iv, Reason: ReasonRestrictedHours}
	default:
		e.mu.Lock()
		out = e.commit(ctx, strings.TrimSpace(req.Subject), iv)
		e.mu.Unlock()
	}

	if out.Status == StatusRejected {
		out.Alternatives = e.alternatives(ctx, iv.Start)
	}
	return out
}

// parseRequest runs the form checks and returns the requested interval.
func (e *Engine) parseRequest(req BookingRequest) (Interval, Reason) {
	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" || strings.TrimSpace(req.Subject) == "" {
		return Interval{}, ReasonMissingFields
	}

	hhmm, ok := NormalizeTime(req.Time)
	if !ok {
		return Interval{}, ReasonUnparsedTime
	}

	start, err := ParseSlot(req.Date, hhmm)
	if err != nil {
		return Interval{}, ReasonInvalidDate
	}

	if !ValidDurationMinutes(req.DurationMinutes) {
		return Interval{}, ReasonInvalidDuration
	}
	iv := NewInterval(start, e.policy.duration(req.DurationMinutes))
	if !iv.Valid() {
		return iv, ReasonInvalidDuration
	}
	return iv, ""
}

// commit performs the conflict checks and the insert. Callers hold e.mu.
func (e *Engine) commit(ctx context.Context, subject string, iv Interval) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusFailed, Requested: iv, Err: classifyCalendarErr(ctx, "book", err)}
	}

	if m, ok := e.ledger.ConflictsWith(iv); ok {
		return Outcome{Status: StatusRejected, Requested: iv, Reason: ReasonLocalConflict, Conflict: m.Interval}
	}

	events, err := e.listEvents(ctx, iv.Widen(e.policy.SearchMargin))
	if err != nil {
		return Outcome{Status: StatusFailed, Requested: iv, Err: err}
	}
	if ev, ok := remoteConflict(iv, events); ok {
		return Outcome{Status: StatusRejected, Requested: iv, Reason: ReasonRemoteConflict, Conflict: ev.Interval}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusFailed, Requested: iv, Err: classifyCalendarErr(ctx, "book", err)}
	}

	created, err := e.createEvent(ctx, subject, iv)
	if err != nil {
		return Outcome{Status: StatusFailed, Requested: iv, Err: err}
	}

	m := Meeting{
		ID:              uuid.NewString(),
		EventID:         created.ID,
		Subject:         subject,
		Interval:        iv,
		ConferenceLink:  created.ConferenceLink,
		DurationMinutes: int(iv.Duration() / time.Minute),
		BookedAt:        e.clock.Now(),
	}
	e.ledger.Record(m)
	e.metrics.RecordLedgerMeeting(ctx)

	return Outcome{Status: StatusConfirmed, Requested: iv, Meeting: m}
}

// alternatives suggests slots after a rejection, starting from the later of
// the requested day and today. A failed lookup yields no alternatives.
func (e *Engine) alternatives(ctx context.Context, requested time.Time) []time.Time {
	from := e.clock.Now()
	if requested.After(from) {
		from = requested
	}
	suggestions, err := e.SuggestNextSlots(ctx, from, e.policy.SuggestionDays, e.policy.SlotsPerDay)
	if err != nil {
		e.log("booking.alternatives").Warn("failed to compute alternatives", logging.Err(err))
		return nil
	}
	return suggestions
}

// IsAvailable reports whether the slot passes the ledger and remote
// conflict checks Book would run. It does not apply the past-time or
// restricted-hour rules and does not take the booking lock. Malformed input
// returns an error wrapping ErrValidation.
func (e *Engine) IsAvailable(ctx context.Context, date, clock string, durationMinutes int) (bool, error) {
	ctx, span := instrumentation.StartSpan(ctx, "availability.check")
	defer span.End()

	iv, reason := e.parseRequest(BookingRequest{Date: date, Time: clock, Subject: "availability check", DurationMinutes: durationMinutes})
	if reason != "" {
		return false, fmt.Errorf("%s: %w", reason, ErrValidation)
	}

	if _, ok := e.ledger.ConflictsWith(iv); ok {
		e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryCheck, instrumentation.StatusSuccess, 0)
		return false, nil
	}

	events, err := e.listEvents(ctx, iv.Widen(e.policy.SearchMargin))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryCheck, instrumentation.StatusError, 0)
		return false, fmt.Errorf("%w: %w", ErrAvailabilityFetchFailed, err)
	}

	_, busy := remoteConflict(iv, events)
	free := 0
	if !busy {
		free = 1
	}
	e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryCheck, instrumentation.StatusSuccess, free)
	return !busy, nil
}
