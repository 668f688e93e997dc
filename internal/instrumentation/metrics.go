package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus    = "status"
	attrReason    = "reason"
	attrProvider  = "provider"
	attrOperation = "operation"
	attrQuery     = "query"
	attrTool      = "tool"
)

// Metrics records meetbook's observability metrics. A zero Metrics is a
// valid no-op recorder, and so is a nil *Metrics.
type Metrics struct {
	bookingsTotal   metric.Int64Counter
	bookingDuration metric.Float64Histogram
	ledgerMeetings  metric.Int64UpDownCounter

	availabilityQueriesTotal metric.Int64Counter
	availableSlots           metric.Int64Histogram

	calendarOperationsTotal   metric.Int64Counter
	calendarOperationDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	activeSessions       metric.Int64UpDownCounter

	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.bookingsTotal, err = meter.Int64Counter(
		"meetbook_bookings_total",
		metric.WithDescription("Booking attempts by outcome status and reason"),
		metric.WithUnit("{booking}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetbook_bookings_total counter: %w", err)
	}

	m.bookingDuration, err = meter.Float64Histogram(
		"meetbook_booking_duration_seconds",
		metric.WithDescription("Booking pipeline duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetbook_booking_duration_seconds histogram: %w", err)
	}

	m.ledgerMeetings, err = meter.Int64UpDownCounter(
		"meetbook_ledger_meetings",
		metric.WithDescription("Meetings recorded in the in-process ledger"),
		metric.WithUnit("{meeting}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetbook_ledger_meetings gauge: %w", err)
	}

	m.availabilityQueriesTotal, err = meter.Int64Counter(
		"meetbook_availability_queries_total",
		metric.WithDescription("Availability queries by kind and status"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetbook_availability_queries_total counter: %w", err)
	}

	m.availableSlots, err = meter.Int64Histogram(
		"meetbook_available_slots",
		metric.WithDescription("Number of free slots returned per availability query"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 8, 12, 16, 20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetbook_available_slots histogram: %w", err)
	}

	m.calendarOperationsTotal, err = meter.Int64Counter(
		"calendar_operations_total",
		metric.WithDescription("Calendar provider operations by provider, operation and status"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_operations_total counter: %w", err)
	}

	m.calendarOperationDuration, err = meter.Float64Histogram(
		"calendar_operation_duration_seconds",
		metric.WithDescription("Calendar provider operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_operation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active MCP sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	return m, nil
}

// RecordBooking records one pass through the booking pipeline.
//
// Parameters:
//   - status: "confirmed", "rejected" or "failed"
//   - reason: rejection reason code, empty unless rejected
//   - duration: time taken for the whole pipeline
func (m *Metrics) RecordBooking(ctx context.Context, status, reason string, duration time.Duration) {
	if m == nil || m.bookingsTotal == nil || m.bookingDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if reason != "" {
		attrs = append(attrs, attribute.String(attrReason, reason))
	}
	m.bookingsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	durAttrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if m.detailedLabels && reason != "" {
		durAttrs = append(durAttrs, attribute.String(attrReason, reason))
	}
	m.bookingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durAttrs...))
}

// RecordLedgerMeeting increments the ledger size gauge.
func (m *Metrics) RecordLedgerMeeting(ctx context.Context) {
	if m == nil || m.ledgerMeetings == nil {
		return
	}
	m.ledgerMeetings.Add(ctx, 1)
}

// RecordAvailabilityQuery records an availability query and, on success,
// how many slots it produced.
func (m *Metrics) RecordAvailabilityQuery(ctx context.Context, query, status string, slots int) {
	if m == nil || m.availabilityQueriesTotal == nil || m.availableSlots == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrQuery, query),
		attribute.String(attrStatus, status),
	}
	m.availabilityQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if status == StatusSuccess {
		m.availableSlots.Record(ctx, int64(slots), metric.WithAttributes(attribute.String(attrQuery, query)))
	}
}

// RecordCalendarOperation records a call to a calendar provider.
func (m *Metrics) RecordCalendarOperation(ctx context.Context, provider, operation, status string, duration time.Duration) {
	if m == nil || m.calendarOperationsTotal == nil || m.calendarOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrProvider, provider),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.calendarOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
