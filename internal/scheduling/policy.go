package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// Policy holds the scheduling rules. Times of day are offsets from UTC
// midnight.
type Policy struct {
	// BusinessStart and BusinessEnd bound the daily window scanned by
	// ListAvailable.
	BusinessStart time.Duration
	BusinessEnd   time.Duration

	// SlotStep is the distance between candidate start times. It is
	// independent of the requested duration.
	SlotStep time.Duration

	// RestrictedStart and RestrictedEnd bound the nightly band in which no
	// meeting may start.
	RestrictedStart time.Duration
	RestrictedEnd   time.Duration

	// SearchMargin widens the remote query made before booking. Overlap is
	// still decided against the requested interval.
	SearchMargin time.Duration

	// SuggestionMargin is the clearance a suggested slot needs around it.
	SuggestionMargin time.Duration

	// PreferredHours are the UTC hours offered by SuggestNextSlots.
	PreferredHours []int
	SuggestionDays int
	SlotsPerDay    int

	// DefaultDuration applies when a caller passes a non-positive duration.
	DefaultDuration time.Duration

	// CalendarTimeout bounds every call to the calendar collaborator.
	CalendarTimeout time.Duration
}

// DefaultPolicy returns the standard rules: business hours 08:00-18:00,
// 30 minute scan, no meetings starting 00:00-06:00, one hour remote search
// margin, suggestions at 09, 11, 14 and 16 over the next four days.
func DefaultPolicy() Policy {
	return Policy{
		BusinessStart:    8 * time.Hour,
		BusinessEnd:      18 * time.Hour,
		SlotStep:         30 * time.Minute,
		RestrictedStart:  0,
		RestrictedEnd:    6 * time.Hour,
		SearchMargin:     time.Hour,
		SuggestionMargin: time.Minute,
		PreferredHours:   []int{9, 11, 14, 16},
		SuggestionDays:   4,
		SlotsPerDay:      4,
		DefaultDuration:  60 * time.Minute,
		CalendarTimeout:  15 * time.Second,
	}
}

// Validate checks that the policy is internally consistent.
func (p Policy) Validate() error {
	var errs []error
	day := 24 * time.Hour

	if p.BusinessStart < 0 || p.BusinessEnd > day || p.BusinessStart >= p.BusinessEnd {
		errs = append(errs, fmt.Errorf("business window [%s, %s) is not within one day", p.BusinessStart, p.BusinessEnd))
	}
	if p.SlotStep <= 0 {
		errs = append(errs, fmt.Errorf("slot step must be positive, got %s", p.SlotStep))
	}
	if p.RestrictedStart < 0 || p.RestrictedEnd > day || p.RestrictedStart > p.RestrictedEnd {
		errs = append(errs, fmt.Errorf("restricted band [%s, %s) is not within one day", p.RestrictedStart, p.RestrictedEnd))
	}
	if p.SearchMargin < 0 || p.SuggestionMargin < 0 {
		errs = append(errs, errors.New("search margins must not be negative"))
	}
	seen := make(map[int]bool, len(p.PreferredHours))
	for _, h := range p.PreferredHours {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("preferred hour %d out of range", h))
		}
		if seen[h] {
			errs = append(errs, fmt.Errorf("preferred hour %d listed twice", h))
		}
		seen[h] = true
	}
	if p.SuggestionDays < 0 || p.SlotsPerDay < 0 {
		errs = append(errs, errors.New("suggestion days and slots per day must not be negative"))
	}
	if p.DefaultDuration <= 0 {
		errs = append(errs, fmt.Errorf("default duration must be positive, got %s", p.DefaultDuration))
	}
	if p.CalendarTimeout <= 0 {
		errs = append(errs, fmt.Errorf("calendar timeout must be positive, got %s", p.CalendarTimeout))
	}

	return errors.Join(errs...)
}

// Restricted reports whether t falls in the nightly band.
func (p Policy) Restricted(t time.Time) bool {
	tod := timeOfDay(t)
	return tod >= p.RestrictedStart && tod < p.RestrictedEnd
}

// BusinessWindow returns the business window of the UTC day containing day.
func (p Policy) BusinessWindow(day time.Time) Interval {
	midnight := startOfDay(day)
	return Interval{Start: midnight.Add(p.BusinessStart), End: midnight.Add(p.BusinessEnd)}
}

// MaxDurationMinutes is the longest meeting that can be booked or queried.
const MaxDurationMinutes = 24 * 60

// ValidDurationMinutes reports whether minutes is an acceptable request
// length. Zero selects the default.
func ValidDurationMinutes(minutes int) bool {
	return minutes >= 0 && minutes <= MaxDurationMinutes
}

// duration resolves a caller-supplied minute count, applying the default
// for non-positive values.
func (p Policy) duration(minutes int) time.Duration {
	if minutes <= 0 {
		return p.DefaultDuration
	}
	return time.Duration(minutes) * time.Minute
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func timeOfDay(t time.Time) time.Duration {
	return t.UTC().Sub(startOfDay(t))
}
