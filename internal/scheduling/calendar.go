package scheduling

import (
	"context"
	"time"
)

// RemoteEvent is a read-only projection of an entry in the remote calendar.
// All-day entries are reported as full UTC days.
type RemoteEvent struct {
	ID       string
	Summary  string
	Interval Interval
	AllDay   bool
}

// CreatedEvent is what the calendar returns after inserting a meeting.
// ConferenceLink is empty when no link could be obtained.
type CreatedEvent struct {
	ID             string
	ConferenceLink string
}

// Calendar is the remote calendar the engine books against.
//
// ListEvents returns the events overlapping [start, end) sorted by start.
// CreateEvent inserts a meeting. Implementations wrap credential problems
// in ErrAuthFailure and every other failure in ErrRemoteFailure.
type Calendar interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]RemoteEvent, error)
	CreateEvent(ctx context.Context, subject string, iv Interval, wantsConferenceLink bool) (CreatedEvent, error)
}
