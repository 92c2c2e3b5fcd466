package fleet

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PendingCommand is an IR command waiting in a device's queue.
//
// It is immutable once enqueued. Ownership transfers to the device when a
// poll dequeues it; the queue keeps no "delivered but unacknowledged" state.
type PendingCommand struct {
	// ID is assigned at enqueue time. Ids are unique across the whole
	// process and strictly increasing, never reused across device queues.
	ID int64 `json:"id"`

	// DeviceID identifies the target IR blaster.
	DeviceID string `json:"deviceId"`

	// Type is the IR protocol the device should use ("raw", "nec",
	// "samsung", ...). Opaque to the server.
	Type string `json:"type"`

	// Code is the payload: a hex code or a serialised raw timing array.
	Code string `json:"code"`

	// Description is optional human-readable context for logs and UIs.
	Description string `json:"description,omitempty"`
}

// DeviceStatus is the externally visible view of a device.
type DeviceStatus struct {
	DeviceID string `json:"deviceId"`

	// Online is true iff the device contacted the server within the
	// liveness window.
	Online bool `json:"online"`

	// LastSeen is the last contact time in Unix milliseconds, or null if
	// the device has never contacted the server.
	LastSeen *int64 `json:"lastSeen"`

	// PendingCommands is the current queue depth.
	PendingCommands int `json:"pendingCommands"`
}
