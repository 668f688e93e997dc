// Package desk exposes the scheduling engine as the plain callables a
// support agent uses: book a meeting, list or check availability, suggest
// slots, and greet the user. Every callable returns text meant to be shown
// to the user as is, or a typed result with an error for programmatic use.
//
// A Desk wraps one scheduling.Engine and is shared by all sessions booking
// against the same calendar. Per-conversation state lives in a Session.
package desk
