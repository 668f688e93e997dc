package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyCalendar  = "calendar"
	KeySession   = "session"
	KeyUserHash  = "user_hash"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyReason    = "reason"
	KeyError     = "error"
	KeyTool      = "tool"
	KeySlot      = "slot"
	KeyMeetingID = "meeting_id"
)

// Status values for consistent logging.
// Duplicated from the instrumentation package, which imports logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// slotLayout renders interval boundaries in log lines.
const slotLayout = "2006-01-02 15:04"

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithCalendar returns a logger with the calendar attribute set.
func WithCalendar(logger *slog.Logger, calendarID string) *slog.Logger {
	return logger.With(slog.String(KeyCalendar, calendarID))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Calendar returns a slog attribute for the calendar identifier.
func Calendar(calendarID string) slog.Attr {
	return slog.String(KeyCalendar, calendarID)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Reason returns a slog attribute for a rejection reason code.
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// MeetingID returns a slog attribute for a booked meeting identifier.
func MeetingID(id string) slog.Attr {
	return slog.String(KeyMeetingID, id)
}

// Duration returns a slog attribute for an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Slot returns a slog attribute describing a UTC time window as
// "YYYY-MM-DD HH:MM/HH:MM".
func Slot(start, end time.Time) slog.Attr {
	return slog.String(KeySlot, start.UTC().Format(slotLayout)+"/"+end.UTC().Format("15:04"))
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Anonymize returns a hashed representation of an identifier (email, user
// name, session ID) so log entries can be correlated without exposing it.
func Anonymize(value string) string {
	if value == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(value))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user identifier.
//
// Usage:
//
//	logger.Info("greeted user", logging.UserHash(session.UserName()))
func UserHash(value string) slog.Attr {
	return slog.String(KeyUserHash, Anonymize(value))
}

// Session returns a slog attribute with the anonymized MCP session ID.
func Session(sessionID string) slog.Attr {
	return slog.String(KeySession, Anonymize(sessionID))
}

// SanitizeToken returns a masked version of a token for logging.
// Only the length is reported; no token content is exposed.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
