package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// CommandEvent records a command lifecycle transition. It satisfies the
// dispatcher's Metrics interface.
//
// Each call writes one point to the command_events measurement tagged
// by event kind, device and command type; downstream queries count and
// group them.
func (c *Client) CommandEvent(event, deviceID, commandType string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"event":     event,
		"device_id": deviceID,
	}
	if commandType != "" {
		tags["command_type"] = commandType
	}

	point := write.NewPoint(
		"command_events",
		tags,
		map[string]interface{}{"count": int64(1)},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// QueueDepth records a device's pending command count after a change.
func (c *Client) QueueDepth(deviceID string, depth int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"queue_depth",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{"pending": int64(depth)},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}
