package scheduling

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed requests: missing fields, unparsed time,
	// bad date or duration.
	ErrValidation = errors.New("invalid booking request")

	// ErrPolicyViolation marks well-formed requests the rules refuse: past
	// time, restricted hours, conflicts.
	ErrPolicyViolation = errors.New("booking not allowed")

	// ErrAuthFailure means the calendar credentials are expired or revoked.
	ErrAuthFailure = errors.New("calendar credentials expired or revoked")

	// ErrRemoteFailure is any other calendar failure.
	ErrRemoteFailure = errors.New("calendar request failed")

	// ErrCalendarTimeout means a calendar call exceeded its deadline.
	ErrCalendarTimeout = errors.New("calendar request timed out")

	// ErrAvailabilityFetchFailed means availability could not be computed
	// because calendar events could not be fetched. It is never reported as
	// an empty result.
	ErrAvailabilityFetchFailed = errors.New("availability fetch failed")
)

// Reason identifies why a booking was rejected.
type Reason string

const (
	ReasonMissingFields   Reason = "missing_fields"
	ReasonUnparsedTime    Reason = "unparsed_time"
	ReasonInvalidDate     Reason = "invalid_date"
	ReasonInvalidDuration Reason = "invalid_duration"
	ReasonPastTime        Reason = "past_time"
	ReasonRestrictedHours Reason = "restricted_hours"
	ReasonLocalConflict   Reason = "local_conflict"
	ReasonRemoteConflict  Reason = "remote_conflict"
)

// Err returns the sentinel classifying r.
func (r Reason) Err() error {
	switch r {
	case ReasonMissingFields, ReasonUnparsedTime, ReasonInvalidDate, ReasonInvalidDuration:
		return ErrValidation
	default:
		return ErrPolicyViolation
	}
}

// IsValidation reports whether r rejects the request's form rather than
// its content.
func (r Reason) IsValidation() bool {
	return errors.Is(r.Err(), ErrValidation)
}

// classifyCalendarErr maps a calendar error to the package taxonomy. A
// deadline or cancellation on ctx becomes ErrCalendarTimeout; errors that
// already carry a sentinel pass through.
func classifyCalendarErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrAuthFailure), errors.Is(err, ErrCalendarTimeout):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrCalendarTimeout, err)
	case errors.Is(err, ErrRemoteFailure):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrRemoteFailure, err)
	}
}
