package scheduling

import (
	"strings"
	"time"
)

// Layouts used for parsing and rendering dates and times.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// timeForms are tried in order; the first match wins. Go's "15" and "3"
// accept one or two digits, so "9:00" and "09:00" both match "15:04".
var timeForms = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// NormalizeTime converts a user-supplied time of day to zero-padded 24-hour
// "HH:MM". It accepts "9:00 AM", "09:00" and "9:00". When nothing matches,
// raw is returned unchanged together with ok=false, and callers must treat
// the value as unparsed.
func NormalizeTime(raw string) (normalized string, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return raw, false
	}
	for _, form := range timeForms {
		if t, err := time.Parse(form, s); err == nil {
			return t.Format(TimeLayout), true
		}
	}
	return raw, false
}

// ParseSlot combines a "YYYY-MM-DD" date and an already normalized "HH:MM"
// time into a UTC instant.
func ParseSlot(date, hhmm string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, strings.TrimSpace(date)+" "+hhmm, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" date as UTC midnight.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.UTC)
}
