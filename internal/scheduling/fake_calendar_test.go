package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// fakeCalendar is an in-memory Calendar that records its calls.
type fakeCalendar struct {
	mu        sync.Mutex
	events    []RemoteEvent
	listCalls int
	created   int
	listErr   error
	createErr error
	delay     time.Duration
}

func (f *fakeCalendar) add(start, end time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, RemoteEvent{
		ID:       fmt.Sprintf("ev-%d", len(f.events)),
		Interval: Interval{Start: start, End: end},
	})
}

func (f *fakeCalendar) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeCalendar) ListEvents(ctx context.Context, start, end time.Time) ([]RemoteEvent, error) {
	f.mu.Lock()
	f.listCalls++
	listErr := f.listErr
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, listErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	query := Interval{Start: start, End: end}
	var out []RemoteEvent
	for _, ev := range f.events {
		if Overlaps(ev.Interval, query) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Interval.Start.Before(out[j].Interval.Start) })
	return out, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, subject string, iv Interval, wantsConferenceLink bool) (CreatedEvent, error) {
	if err := f.wait(ctx); err != nil {
		return CreatedEvent{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return CreatedEvent{}, f.createErr
	}
	f.created++
	id := fmt.Sprintf("created-%d", f.created)
	f.events = append(f.events, RemoteEvent{ID: id, Summary: subject, Interval: iv})

	link := ""
	if wantsConferenceLink {
		link = "https://meet.google.com/" + id
	}
	return CreatedEvent{ID: id, ConferenceLink: link}, nil
}

func (f *fakeCalendar) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// at returns the UTC instant for a "2006-01-02 15:04" string.
func at(s string) time.Time {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestEngine(cal Calendar, now string) (*Engine, *FixedClock) {
	clock := NewFixedClock(at(now))
	return NewEngine(cal, DefaultPolicy(), WithClock(clock)), clock
}
