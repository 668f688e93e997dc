package scheduling

import (
	"sync"
	"time"
)

// Meeting is a booking confirmed by this process. It is never mutated after
// creation.
type Meeting struct {
	ID              string
	EventID         string
	Subject         string
	Interval        Interval
	ConferenceLink  string
	DurationMinutes int
	BookedAt        time.Time
}

// Ledger is the in-process record of meetings booked during the life of the
// process, in insertion order. It is safe for concurrent use. Overlap
// freedom is maintained by the Engine, which only records meetings that
// passed its conflict checks under the booking lock.
type Ledger struct {
	mu       sync.RWMutex
	meetings []Meeting
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends m unconditionally.
func (l *Ledger) Record(m Meeting) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.meetings = append(l.meetings, m)
}

// ConflictsWith returns the first recorded meeting, in insertion order,
// whose interval overlaps iv.
func (l *Ledger) ConflictsWith(iv Interval) (Meeting, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.meetings {
		if Overlaps(m.Interval, iv) {
			return m, true
		}
	}
	return Meeting{}, false
}

// Meetings returns a copy of the recorded meetings.
func (l *Ledger) Meetings() []Meeting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Meeting, len(l.meetings))
	copy(out, l.meetings)
	return out
}

// Len returns the number of recorded meetings.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.meetings)
}
