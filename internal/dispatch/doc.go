// Package dispatch is the room-facing entry point of the core. It
// sequences the collaborators a command passes through: room lookup,
// intent resolution against the catalog, enqueueing for the device,
// and the liveness/history/event bookkeeping around polls and acks.
//
// The façade owns the sequencing that the queue manager deliberately
// does not: polls and acks touch liveness here, and delivery history
// and event publication are recorded here, best-effort, so the queue
// operations themselves never block on I/O.
package dispatch
