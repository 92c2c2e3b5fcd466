package mqtt

import (
	"encoding/json"
	"time"

	"github.com/roomlink/roomlink-core/internal/fleet"
)

// EventPublisher publishes command lifecycle events to the broker. It
// satisfies the dispatcher's EventSink interface.
//
// Publication is fire and forget: a broker outage costs the event, not
// the command, so failures are logged and swallowed.
type EventPublisher struct {
	client *Client
	qos    byte
	logger Logger
}

// NewEventPublisher wraps a connected client as an event sink.
func NewEventPublisher(client *Client, qos byte, logger Logger) *EventPublisher {
	return &EventPublisher{client: client, qos: qos, logger: logger}
}

// commandEvent is the wire format for lifecycle events.
type commandEvent struct {
	Event       string `json:"event"`
	DeviceID    string `json:"device_id"`
	CommandID   int64  `json:"command_id"`
	CommandType string `json:"command_type,omitempty"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// CommandQueued publishes a queued event for the command.
func (p *EventPublisher) CommandQueued(deviceID string, cmd fleet.PendingCommand) {
	p.publish(fleet.HistoryEventQueued, deviceID, cmd.ID, cmd.Type, cmd.Description)
}

// CommandDelivered publishes a delivered event for the command.
func (p *EventPublisher) CommandDelivered(deviceID string, cmd fleet.PendingCommand) {
	p.publish(fleet.HistoryEventDelivered, deviceID, cmd.ID, cmd.Type, cmd.Description)
}

// CommandAcknowledged publishes an acknowledged event for the command.
func (p *EventPublisher) CommandAcknowledged(deviceID string, commandID int64) {
	p.publish(fleet.HistoryEventAcknowledged, deviceID, commandID, "", "")
}

func (p *EventPublisher) publish(event, deviceID string, commandID int64, commandType, description string) {
	payload, err := json.Marshal(commandEvent{
		Event:       event,
		DeviceID:    deviceID,
		CommandID:   commandID,
		CommandType: commandType,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	topic := Topics{}.CommandEvent(event, deviceID)
	if err := p.client.Publish(topic, payload, p.qos, false); err != nil {
		if p.logger != nil {
			p.logger.Warn("publishing command event failed",
				"topic", topic, "device_id", deviceID, "error", err)
		}
	}
}
