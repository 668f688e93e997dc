package scheduling

import (
	"fmt"
	"time"
)

// Interval is a half-open UTC time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns the interval [start, start+d) in UTC.
func NewInterval(start time.Time, d time.Duration) Interval {
	start = start.UTC()
	return Interval{Start: start, End: start.Add(d)}
}

// Valid reports whether Start is strictly before End.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether iv and other share at least one instant.
// Touching endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv, other)
}

// Widen returns iv extended by margin on both sides.
func (iv Interval) Widen(margin time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-margin), End: iv.End.Add(margin)}
}

// String renders the interval as "2006-01-02 15:04 - 15:04 UTC".
func (iv Interval) String() string {
	return fmt.Sprintf("%s - %s UTC", iv.Start.UTC().Format(DateTimeLayout), iv.End.UTC().Format(TimeLayout))
}

// Overlaps is the single conflict predicate used across the package:
// a.Start < b.End && b.Start < a.End.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
