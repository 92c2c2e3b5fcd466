package room

import "time"

// Room represents a physical room and its IR control assignment.
//
// DeviceID is the blaster serving the room; nil means the room has no
// device assigned yet, which makes room-level commands fail fast.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	HasIRControl bool      `json:"has_ir_control"`
	DeviceID     *string   `json:"device_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
