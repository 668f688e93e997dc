package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/logging"
	"github.com/teemow/meetbook/internal/scheduling"
)

const (
	eventStatusCancelled = "cancelled"
	entryPointVideo      = "video"
	solutionHangoutsMeet = "hangoutsMeet"
)

// Google is a scheduling.Calendar backed by the Google Calendar API.
type Google struct {
	cfg     GoogleConfig
	limiter *rate.Limiter

	mu  sync.Mutex
	svc *gcal.Service
}

// NewGoogle creates a client. The API service is built on first use from
// the account's stored token, so a missing token surfaces as
// scheduling.ErrAuthFailure on the first call rather than at startup.
func NewGoogle(cfg GoogleConfig) *Google {
	cfg.setDefaults()
	return &Google{
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.RateLimit, cfg.Burst),
	}
}

// NewGoogleWithService creates a client around an existing service.
func NewGoogleWithService(svc *gcal.Service, cfg GoogleConfig) *Google {
	g := NewGoogle(cfg)
	g.svc = svc
	return g
}

// CalendarID returns the calendar this client books into.
func (g *Google) CalendarID() string {
	return g.cfg.CalendarID
}

// Account returns the account whose token the client uses.
func (g *Google) Account() string {
	return g.cfg.Account
}

// Reset drops the cached service so the next call reloads the token.
func (g *Google) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.svc = nil
}

func (g *Google) service(ctx context.Context) (*gcal.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}
	if g.cfg.Tokens == nil || g.cfg.OAuth == nil {
		return nil, fmt.Errorf("%w: no OAuth client configured", scheduling.ErrAuthFailure)
	}

	tok, err := g.cfg.Tokens.GetTokenForAccount(ctx, g.cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: no Google OAuth token for account %s: %w", scheduling.ErrAuthFailure, g.cfg.Account, err)
	}

	// The token source outlives this request, so it must not inherit ctx.
	client := google.HTTPClient(context.Background(), g.cfg.OAuth, tok)
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	g.svc = svc
	return svc, nil
}

// ListEvents returns the events overlapping [start, end) sorted by start.
// Recurring events are expanded and cancelled instances skipped.
func (g *Google) ListEvents(ctx context.Context, start, end time.Time) ([]scheduling.RemoteEvent, error) {
	began := time.Now()
	ctx, span := instrumentation.StartCalendarSpan(ctx, instrumentation.ProviderGoogle, instrumentation.OperationList)
	defer span.End()

	events, err := g.listEvents(ctx, start, end)
	g.record(ctx, span, instrumentation.ProviderGoogle, instrumentation.OperationList, began, err)
	return events, err
}

func (g *Google) listEvents(ctx context.Context, start, end time.Time) ([]scheduling.RemoteEvent, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, g.wrap(ctx, "list events", err)
	}

	call := svc.Events.List(g.cfg.CalendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var out []scheduling.RemoteEvent
	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			ev, ok := toRemoteEvent(item)
			if !ok {
				g.cfg.Logger.Debug("skipping calendar event without usable times",
					logging.Calendar(g.cfg.CalendarID), logging.MeetingID(item.Id))
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, g.wrap(ctx, "list events", err)
	}

	// The API orders all-day entries by date string; re-sort on instants.
	slices.SortStableFunc(out, func(a, b scheduling.RemoteEvent) int {
		return a.Interval.Start.Compare(b.Interval.Start)
	})
	return out, nil
}

// CreateEvent inserts a meeting in UTC. With wantsConferenceLink the event
// carries a Google Meet conference; when none can be obtained the event is
// still created and ConferenceLink is empty.
func (g *Google) CreateEvent(ctx context.Context, subject string, iv scheduling.Interval, wantsConferenceLink bool) (scheduling.CreatedEvent, error) {
	began := time.Now()
	ctx, span := instrumentation.StartCalendarSpan(ctx, instrumentation.ProviderGoogle, instrumentation.OperationCreate)
	defer span.End()

	created, err := g.createEvent(ctx, subject, iv, wantsConferenceLink)
	g.record(ctx, span, instrumentation.ProviderGoogle, instrumentation.OperationCreate, began, err)
	return created, err
}

func (g *Google) createEvent(ctx context.Context, subject string, iv scheduling.Interval, wantsLink bool) (scheduling.CreatedEvent, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return scheduling.CreatedEvent{}, err
	}

	event := &gcal.Event{
		Summary: subject,
		Start:   &gcal.EventDateTime{DateTime: iv.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:     &gcal.EventDateTime{DateTime: iv.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	call := svc.Events.Insert(g.cfg.CalendarID, event)

	var link string
	if wantsLink {
		switch g.cfg.Conference {
		case ConferenceMeet:
			link = g.standaloneLink(ctx)
			if link != "" {
				event.Location = link
				event.Description = "Join with Google Meet: " + link
			}
		default:
			event.ConferenceData = &gcal.ConferenceData{
				CreateRequest: &gcal.CreateConferenceRequest{
					RequestId:             uuid.NewString(),
					ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: solutionHangoutsMeet},
				},
			}
			call = call.ConferenceDataVersion(1)
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return scheduling.CreatedEvent{}, g.wrap(ctx, "create event", err)
	}
	inserted, err := call.Context(ctx).Do()
	if err != nil {
		return scheduling.CreatedEvent{}, g.wrap(ctx, "create event", err)
	}

	if wantsLink && link == "" {
		link = conferenceLink(inserted)
		if link == "" && g.cfg.Conference != ConferenceMeet {
			link = g.standaloneLink(ctx)
		}
	}

	return scheduling.CreatedEvent{ID: inserted.Id, ConferenceLink: link}, nil
}

// standaloneLink asks the link provider for a Meet space. Failures are
// logged and yield "".
func (g *Google) standaloneLink(ctx context.Context) string {
	if g.cfg.Links == nil {
		return ""
	}

	began := time.Now()
	ctx, span := instrumentation.StartCalendarSpan(ctx, instrumentation.ProviderMeet, instrumentation.OperationCreate)
	defer span.End()

	link, err := g.cfg.Links.MeetingLink(ctx)
	g.record(ctx, span, instrumentation.ProviderMeet, instrumentation.OperationCreate, began, err)
	if err != nil {
		g.cfg.Logger.Warn("could not create Meet space", logging.Calendar(g.cfg.CalendarID), logging.Err(err))
		return ""
	}
	return link
}

func (g *Google) record(ctx context.Context, span trace.Span, provider, op string, began time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	g.cfg.Metrics.RecordCalendarOperation(ctx, provider, op, status, time.Since(began))
}

// wrap classifies err. Context errors pass through so the caller can tell
// a timeout from a remote failure.
func (g *Google) wrap(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, err)
	case google.IsAuthError(err):
		return fmt.Errorf("%s: %w: %w", op, scheduling.ErrAuthFailure, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, scheduling.ErrRemoteFailure, err)
	}
}

// toRemoteEvent converts an API event. All-day entries span whole UTC days
// with an exclusive end date; a missing end means one day.
func toRemoteEvent(item *gcal.Event) (scheduling.RemoteEvent, bool) {
	if item == nil || item.Start == nil || item.Status == eventStatusCancelled {
		return scheduling.RemoteEvent{}, false
	}

	ev := scheduling.RemoteEvent{ID: item.Id, Summary: item.Summary}

	switch {
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil || item.End == nil {
			return scheduling.RemoteEvent{}, false
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return scheduling.RemoteEvent{}, false
		}
		ev.Interval = scheduling.Interval{Start: start.UTC(), End: end.UTC()}

	case item.Start.Date != "":
		start, err := time.Parse(scheduling.DateLayout, item.Start.Date)
		if err != nil {
			return scheduling.RemoteEvent{}, false
		}
		end := start.Add(24 * time.Hour)
		if item.End != nil && item.End.Date != "" {
			if parsed, err := time.Parse(scheduling.DateLayout, item.End.Date); err == nil && parsed.After(start) {
				end = parsed
			}
		}
		ev.Interval = scheduling.Interval{Start: start, End: end}
		ev.AllDay = true

	default:
		return scheduling.RemoteEvent{}, false
	}

	if !ev.Interval.Valid() {
		return scheduling.RemoteEvent{}, false
	}
	return ev, true
}

// conferenceLink returns the event's video entry point, else its first
// entry point, else the legacy hangout link.
func conferenceLink(event *gcal.Event) string {
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == entryPointVideo && ep.Uri != "" {
				return ep.Uri
			}
		}
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return event.HangoutLink
}
