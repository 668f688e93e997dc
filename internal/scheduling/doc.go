// Package scheduling implements meeting availability and booking against a
// shared calendar.
//
// All instants are UTC and all intervals are half-open [Start, End), so
// back-to-back meetings never conflict. An Engine combines three sources of
// truth:
//
//   - the remote Calendar, which is authoritative and re-queried on every
//     check;
//   - the in-process Ledger of meetings booked by this process, which is an
//     advisory accelerator;
//   - the Policy (business window, restricted band, scan step, margins).
//
// Book runs a short-circuiting pipeline: required fields, time
// normalization, past time, restricted hours, local conflict, remote
// conflict, commit. The conflict checks and the commit run under one lock so
// two concurrent requests for the same slot never both succeed.
package scheduling
