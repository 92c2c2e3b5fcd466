package fleet

import (
	"sync"
	"sync/atomic"
)

// Manager owns one FIFO queue of pending commands per device identifier.
//
// Queues are created lazily on first reference and are never removed.
// Command ids come from a single process-wide atomic counter starting at 1,
// so ids are unique across all devices, not just within one queue.
//
// All methods are safe for concurrent use. Per-device FIFO order is
// guaranteed; no ordering is guaranteed across devices, and a poll that
// races a concurrent enqueue may legitimately return empty.
type Manager struct {
	// capacity bounds each device queue; 0 means unbounded.
	// When full, the oldest pending command is dropped to make room.
	capacity int

	nextID atomic.Int64

	mu     sync.RWMutex
	queues map[string][]PendingCommand

	// Advisory counters for monitoring.
	enqueued  atomic.Int64
	delivered atomic.Int64
	acked     atomic.Int64
	dropped   atomic.Int64

	logger Logger

	// onDrop is called with each command evicted at capacity, outside
	// the queue lock. Nil means no observer.
	onDrop func(PendingCommand)
}

// NewManager creates a queue manager.
//
// Parameters:
//   - capacity: per-device queue bound; 0 for unbounded. Unbounded queues
//     can grow without limit if a device never polls - an accepted
//     operational risk of the original protocol, bounded here only when
//     explicitly configured.
func NewManager(capacity int) *Manager {
	if capacity < 0 {
		capacity = 0
	}
	return &Manager{
		capacity: capacity,
		queues:   make(map[string][]PendingCommand),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetOnDrop registers an observer for commands evicted at capacity.
// Must be called before the manager is shared between goroutines.
func (m *Manager) SetOnDrop(fn func(PendingCommand)) {
	m.onDrop = fn
}

// Enqueue appends a command to the tail of the device's queue, creating the
// queue if absent, and returns the command with its assigned id.
//
// Enqueue never fails. It does not count as device contact; callers that
// want liveness updated must pair this with Tracker.Touch explicitly.
func (m *Manager) Enqueue(deviceID, commandType, code, description string) PendingCommand {
	cmd := PendingCommand{
		ID:          m.nextID.Add(1),
		DeviceID:    deviceID,
		Type:        commandType,
		Code:        code,
		Description: description,
	}

	var dropped *PendingCommand
	m.mu.Lock()
	queue := m.queues[deviceID]
	if m.capacity > 0 && len(queue) >= m.capacity {
		head := queue[0]
		dropped = &head
		queue = queue[1:]
		m.dropped.Add(1)
	}
	m.queues[deviceID] = append(queue, cmd)
	m.mu.Unlock()

	if dropped != nil {
		m.logger.Warn("queue full, dropping oldest command",
			"device_id", deviceID,
			"dropped_id", dropped.ID,
			"capacity", m.capacity,
		)
		if m.onDrop != nil {
			m.onDrop(*dropped)
		}
	}

	m.enqueued.Add(1)
	m.logger.Debug("command queued",
		"device_id", deviceID,
		"command_id", cmd.ID,
		"type", cmd.Type,
	)
	return cmd
}

// DequeueNext removes and returns the head of the device's queue.
//
// This is the device's poll operation. It is non-blocking: when the queue
// is empty or the device is unknown it returns ok=false immediately.
func (m *Manager) DequeueNext(deviceID string) (PendingCommand, bool) {
	m.mu.Lock()
	queue, ok := m.queues[deviceID]
	if !ok {
		// First contact via poll: the device now exists with an empty queue.
		m.queues[deviceID] = nil
		m.mu.Unlock()
		return PendingCommand{}, false
	}
	if len(queue) == 0 {
		m.mu.Unlock()
		return PendingCommand{}, false
	}
	cmd := queue[0]
	m.queues[deviceID] = queue[1:]
	m.mu.Unlock()

	m.delivered.Add(1)
	m.logger.Debug("command delivered",
		"device_id", deviceID,
		"command_id", cmd.ID,
		"type", cmd.Type,
	)
	return cmd, true
}

// Acknowledge records that the device executed the given command.
//
// This is advisory bookkeeping only: the id is not correlated against what
// was actually dequeued, and an ack for an unknown id is accepted silently.
// The original poll protocol does not verify acknowledgements.
func (m *Manager) Acknowledge(deviceID string, commandID int64) {
	m.acked.Add(1)
	m.logger.Info("command acknowledged",
		"device_id", deviceID,
		"command_id", commandID,
	)
}

// PendingCount returns the current queue depth for the device,
// 0 if the device is unknown.
func (m *Manager) PendingCount(deviceID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queues[deviceID])
}

// KnownIDs returns every device identifier that has ever been referenced
// by an enqueue or a poll.
func (m *Manager) KnownIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.queues))
	for id := range m.queues {
		ids = append(ids, id)
	}
	return ids
}

// Stats holds queue manager counters for monitoring.
type Stats struct {
	Devices   int   `json:"devices"`
	Pending   int   `json:"pending"`
	Enqueued  int64 `json:"enqueued"`
	Delivered int64 `json:"delivered"`
	Acked     int64 `json:"acked"`
	Dropped   int64 `json:"dropped"`
}

// GetStats returns current queue manager statistics.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	pending := 0
	devices := len(m.queues)
	for _, q := range m.queues {
		pending += len(q)
	}
	m.mu.RUnlock()

	return Stats{
		Devices:   devices,
		Pending:   pending,
		Enqueued:  m.enqueued.Load(),
		Delivered: m.delivered.Load(),
		Acked:     m.acked.Load(),
		Dropped:   m.dropped.Load(),
	}
}
