// Package instrumentation provides OpenTelemetry metrics, tracing and tool
// audit logging for the meetbook MCP server.
//
// # Metrics
//
// Booking:
//   - meetbook_bookings_total: booking attempts by status and reason
//   - meetbook_booking_duration_seconds: booking pipeline duration
//   - meetbook_ledger_meetings: meetings recorded in the in-process ledger
//
// Availability:
//   - meetbook_availability_queries_total: list/suggest/check queries by status
//   - meetbook_available_slots: free slots returned per query
//
// Calendar provider:
//   - calendar_operations_total: provider calls by provider, operation, status
//   - calendar_operation_duration_seconds: provider call duration
//
// MCP:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - active_sessions
//
// Metrics are exported through the prometheus default registry (served on
// the dedicated metrics port), OTLP, or stdout.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>), the booking
// pipeline (booking.book) and calendar calls (calendar.<provider>.<op>).
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordBooking(ctx, "confirmed", "", time.Since(start))
package instrumentation
