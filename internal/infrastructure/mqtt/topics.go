package mqtt

import "fmt"

// Topic prefixes for the RoomLink event feed.
//
// Event topics follow roomlink/event/{event}/{device_id} so a consumer
// can subscribe per event kind (roomlink/event/delivered/+) or per
// device (roomlink/event/+/esp32-1).
const (
	// TopicPrefixEvent is the base for command lifecycle events.
	TopicPrefixEvent = "roomlink/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "roomlink/system"
)

// Topics provides builders for RoomLink MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// CommandEvent returns the topic for a command lifecycle event.
//
// Example: roomlink/event/delivered/esp32-1
func (Topics) CommandEvent(event, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEvent, event, deviceID)
}

// SystemStatus returns the retained service status topic, also used as
// the Last Will topic.
//
// Example: roomlink/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
