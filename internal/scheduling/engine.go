package scheduling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/logging"
)

// Engine answers availability queries and books meetings against one
// calendar. The ledger and the booking lock are shared by every caller of
// the same Engine, so sessions sharing a calendar must share an Engine.
type Engine struct {
	cal     Calendar
	ledger  *Ledger
	policy  Policy
	clock   Clock
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	// mu serializes ledger check, remote check, insert and record.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for "now". Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLedger sets the ledger. Defaults to a fresh empty ledger.
func WithLedger(l *Ledger) Option {
	return func(e *Engine) { e.ledger = l }
}

// NewEngine creates an Engine for cal governed by policy.
func NewEngine(cal Calendar, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		cal:    cal,
		policy: policy,
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ledger == nil {
		e.ledger = NewLedger()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Policy returns the engine's scheduling rules.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Ledger returns the engine's ledger.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Now returns the engine clock's current instant.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// listEvents fetches remote events in iv under the calendar timeout.
func (e *Engine) listEvents(ctx context.Context, iv Interval) ([]RemoteEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.policy.CalendarTimeout)
	defer cancel()

	events, err := e.cal.ListEvents(ctx, iv.Start, iv.End)
	if err != nil {
		return nil, classifyCalendarErr(ctx, "list events", err)
	}
	return events, nil
}

// createEvent inserts a meeting with a conference link under the calendar
// timeout.
func (e *Engine) createEvent(ctx context.Context, subject string, iv Interval) (CreatedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, e.policy.CalendarTimeout)
	defer cancel()

	created, err := e.cal.CreateEvent(ctx, subject, iv, true)
	if err != nil {
		return CreatedEvent{}, classifyCalendarErr(ctx, "create event", err)
	}
	return created, nil
}

// remoteConflict returns the first event overlapping iv.
func remoteConflict(iv Interval, events []RemoteEvent) (RemoteEvent, bool) {
	for _, ev := range events {
		if Overlaps(ev.Interval, iv) {
			return ev, true
		}
	}
	return RemoteEvent{}, false
}

func (e *Engine) log(op string) *slog.Logger {
	return logging.WithOperation(e.logger, op)
}
