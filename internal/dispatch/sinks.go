package dispatch

import "github.com/roomlink/roomlink-core/internal/fleet"

// EventSink receives command lifecycle notifications. Implementations
// must not block; publication happens on the request path.
type EventSink interface {
	CommandQueued(deviceID string, cmd fleet.PendingCommand)
	CommandDelivered(deviceID string, cmd fleet.PendingCommand)
	CommandAcknowledged(deviceID string, commandID int64)
}

// Metrics receives dispatch measurements for telemetry export.
type Metrics interface {
	CommandEvent(event, deviceID, commandType string)
	QueueDepth(deviceID string, depth int)
}

type noopEventSink struct{}

func (noopEventSink) CommandQueued(string, fleet.PendingCommand)    {}
func (noopEventSink) CommandDelivered(string, fleet.PendingCommand) {}
func (noopEventSink) CommandAcknowledged(string, int64)             {}

type noopMetrics struct{}

func (noopMetrics) CommandEvent(string, string, string) {}
func (noopMetrics) QueueDepth(string, int)              {}
