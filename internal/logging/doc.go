// Package logging provides structured logging utilities for meetbook.
//
// All packages log through the standard library's slog package and use the
// attribute helpers here so that keys stay consistent between the booking
// engine, the calendar client and the MCP tool layer.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "booking.book")
//	logger.Info("meeting confirmed",
//	    logging.Slot(start, end),
//	    logging.MeetingID(id))
//
// Identify a participant without logging the raw value:
//
//	logger.Info("greeted user", logging.UserHash(name))
//
// OAuth tokens are never logged directly; use SanitizeToken.
package logging
