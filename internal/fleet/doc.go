// Package fleet tracks the IR blaster device fleet for RoomLink Core.
//
// RoomLink devices are cheap ESP32 IR blasters that can only make outbound
// HTTP requests. They short-poll the server for work, execute whatever IR
// command they are handed, and acknowledge afterwards. This package owns the
// server side of that protocol:
//
//   - Manager: one FIFO queue of pending commands per device identifier,
//     with process-wide monotonically increasing command ids.
//   - Tracker: last-contact timestamps per device, from which online/offline
//     is derived (a device is online iff it polled within the window).
//   - HistoryRecorder: a best-effort SQLite audit trail of queued, delivered
//     and acknowledged commands.
//
// A device has no registration step. It springs into existence, with an
// empty queue, the first time its identifier is referenced by an enqueue or
// a poll.
//
// Delivery is best-effort. A dequeued command that the device never
// acknowledges is not retried and never expires; acknowledgements are
// advisory bookkeeping only.
//
// # Thread Safety
//
// Manager and Tracker are safe for concurrent use. All operations are
// single atomic steps on internally synchronised structures; nothing in
// this package blocks on another device or on I/O.
package fleet
