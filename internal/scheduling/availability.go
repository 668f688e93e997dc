package scheduling

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/logging"
)

// Slot is a free candidate window within one UTC day.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Interval returns the slot as an Interval.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// String renders the slot as "HH:MM - HH:MM".
func (s Slot) String() string {
	return s.Start.UTC().Format(TimeLayout) + " - " + s.End.UTC().Format(TimeLayout)
}

// ListAvailable returns the free slots of length d on the UTC day containing
// day, in chronological order.
//
// Candidates start at the business window start, or at earliest when that
// is later (a zero earliest is ignored), and advance by the policy's slot
// step while they fit in the window. A candidate is free when it starts in
// the future, outside the restricted band, and overlaps neither a remote
// event nor a ledger meeting. Remote events are fetched once for the whole
// window. A calendar failure is reported as ErrAvailabilityFetchFailed.
func (e *Engine) ListAvailable(ctx context.Context, day time.Time, d time.Duration, earliest time.Time) ([]Slot, error) {
	ctx, span := instrumentation.StartSpan(ctx, "availability.list")
	defer span.End()

	if d <= 0 {
		d = e.policy.DefaultDuration
	}

	window := e.policy.BusinessWindow(day)
	if earliest.After(window.Start) {
		window.Start = earliest.UTC()
	}
	if window.Start.Add(d).After(window.End) {
		e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryList, instrumentation.StatusSuccess, 0)
		return nil, nil
	}

	events, err := e.listEvents(ctx, window)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryList, instrumentation.StatusError, 0)
		e.log("availability.list").Warn("failed to fetch calendar events",
			logging.Slot(window.Start, window.End), logging.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrAvailabilityFetchFailed, err)
	}

	now := e.clock.Now()
	var slots []Slot
	for t := window.Start; !t.Add(d).After(window.End); t = t.Add(e.policy.SlotStep) {
		if !t.After(now) || e.policy.Restricted(t) {
			continue
		}
		candidate := NewInterval(t, d)
		if _, busy := remoteConflict(candidate, events); busy {
			continue
		}
		if _, booked := e.ledger.ConflictsWith(candidate); booked {
			continue
		}
		slots = append(slots, Slot(candidate))
	}

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrSlots, len(slots)))
	e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QueryList, instrumentation.StatusSuccess, len(slots))
	return slots, nil
}

// SuggestNextSlots proposes meeting start times on the daysAhead days after
// the UTC day containing from. Each day offers the first slotsPerDay
// preferred hours, skipping those in the past, in the restricted band, or
// conflicting with the ledger or the remote calendar (with the policy's
// suggestion margin). At most daysAhead*slotsPerDay instants are returned,
// in chronological order. Days are fetched concurrently.
func (e *Engine) SuggestNextSlots(ctx context.Context, from time.Time, daysAhead, slotsPerDay int) ([]time.Time, error) {
	ctx, span := instrumentation.StartSpan(ctx, "availability.suggest")
	defer span.End()

	hours := slices.Clone(e.policy.PreferredHours)
	slices.Sort(hours)
	hours = slices.Compact(hours)
	hours = hours[:min(max(slotsPerDay, 0), len(hours))]
	if daysAhead <= 0 || len(hours) == 0 {
		return nil, nil
	}

	d := e.policy.DefaultDuration
	margin := e.policy.SuggestionMargin
	first := startOfDay(from).AddDate(0, 0, 1)

	dayEvents := make([][]RemoteEvent, daysAhead)
	g, gctx := errgroup.WithContext(ctx)
	for i := range daysAhead {
		day := first.AddDate(0, 0, i)
		query := Interval{
			Start: day.Add(time.Duration(hours[0]) * time.Hour),
			End:   day.Add(time.Duration(hours[len(hours)-1])*time.Hour + d),
		}.Widen(margin)
		g.Go(func() error {
			events, err := e.listEvents(gctx, query)
			dayEvents[i] = events
			return err
		})
	}
	if err := g.Wait(); err != nil {
		instrumentation.SetSpanError(span, err)
		e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QuerySuggest, instrumentation.StatusError, 0)
		return nil, fmt.Errorf("%w: %w", ErrAvailabilityFetchFailed, err)
	}

	now := e.clock.Now()
	limit := daysAhead * len(hours)
	var suggestions []time.Time
	for i, events := range dayEvents {
		day := first.AddDate(0, 0, i)
		for _, h := range hours {
			start := day.Add(time.Duration(h) * time.Hour)
			if !start.After(now) || e.policy.Restricted(start) {
				continue
			}
			candidate := NewInterval(start, d)
			if _, booked := e.ledger.ConflictsWith(candidate); booked {
				continue
			}
			if _, busy := remoteConflict(candidate.Widen(margin), events); busy {
				continue
			}
			suggestions = append(suggestions, start)
			if len(suggestions) == limit {
				break
			}
		}
	}

	e.metrics.RecordAvailabilityQuery(ctx, instrumentation.QuerySuggest, instrumentation.StatusSuccess, len(suggestions))
	return suggestions, nil
}
