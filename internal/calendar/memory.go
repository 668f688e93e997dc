package calendar

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/meetbook/internal/scheduling"
)

// Memory is an in-process scheduling.Calendar. It is safe for concurrent
// use.
type Memory struct {
	mu        sync.Mutex
	events    []scheduling.RemoteEvent
	listErr   error
	createErr error
	noLinks   bool
}

// NewMemory returns an empty calendar.
func NewMemory() *Memory {
	return &Memory{}
}

// Add inserts a timed event and returns its ID.
func (m *Memory) Add(summary string, iv scheduling.Interval) string {
	return m.add(scheduling.RemoteEvent{Summary: summary, Interval: iv})
}

// AddAllDay inserts an event covering the whole UTC day of day.
func (m *Memory) AddAllDay(summary string, day time.Time) string {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return m.add(scheduling.RemoteEvent{
		Summary:  summary,
		Interval: scheduling.Interval{Start: start, End: start.Add(24 * time.Hour)},
		AllDay:   true,
	})
}

func (m *Memory) add(ev scheduling.RemoteEvent) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.ID = uuid.NewString()
	m.events = append(m.events, ev)
	return ev.ID
}

// Events returns a copy of all stored events in insertion order.
func (m *Memory) Events() []scheduling.RemoteEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// FailWith makes subsequent ListEvents and CreateEvent calls return the
// given errors. Nil restores normal behavior.
func (m *Memory) FailWith(listErr, createErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = listErr
	m.createErr = createErr
}

// DisableLinks makes CreateEvent return no conference link.
func (m *Memory) DisableLinks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noLinks = true
}

// ListEvents returns the events overlapping [start, end) sorted by start.
func (m *Memory) ListEvents(ctx context.Context, start, end time.Time) ([]scheduling.RemoteEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	window := scheduling.Interval{Start: start, End: end}
	var out []scheduling.RemoteEvent
	for _, ev := range m.events {
		if scheduling.Overlaps(ev.Interval, window) {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b scheduling.RemoteEvent) int {
		return a.Interval.Start.Compare(b.Interval.Start)
	})
	return out, nil
}

// CreateEvent stores a meeting. The conference link is a fabricated Meet
// URL derived from the event ID.
func (m *Memory) CreateEvent(ctx context.Context, subject string, iv scheduling.Interval, wantsConferenceLink bool) (scheduling.CreatedEvent, error) {
	if err := ctx.Err(); err != nil {
		return scheduling.CreatedEvent{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return scheduling.CreatedEvent{}, m.createErr
	}

	id := uuid.NewString()
	m.events = append(m.events, scheduling.RemoteEvent{ID: id, Summary: subject, Interval: iv})

	created := scheduling.CreatedEvent{ID: id}
	if wantsConferenceLink && !m.noLinks {
		created.ConferenceLink = "https://meet.google.com/" + meetingCode(id)
	}
	return created, nil
}

// meetingCode turns the hex digits of id into a Meet style
// "abc-defg-hij" code.
func meetingCode(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	letters := make([]byte, 0, 10)
	for i := 0; i < len(hex) && len(letters) < 10; i++ {
		c := hex[i]
		switch {
		case c >= '0' && c <= '9':
			letters = append(letters, 'a'+(c-'0'))
		default:
			letters = append(letters, 'k'+(c-'a'))
		}
	}
	return string(letters[:3]) + "-" + string(letters[3:7]) + "-" + string(letters[7:10])
}
