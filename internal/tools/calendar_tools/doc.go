// Package calendar_tools provides the MCP tools that check the shared
// calendar and book meetings on it.
//
// Tools:
//   - schedule_meeting: book a meeting with a Google Meet link
//   - get_availability: open slots on a day as JSON
//   - get_formatted_availability: open slots on a day as text
//   - is_time_slot_available: whether one slot is free
//   - suggest_slots: open slots over the coming days
//
// All times are UTC. Dates are YYYY-MM-DD and times HH:MM or H:MM AM/PM.
package calendar_tools
