package catalog

import (
	"strings"
	"time"
)

// Canonical device types. All other spellings are mapped onto these by
// NormalizeDeviceType.
const (
	DeviceTypeTV = "TV"
	DeviceTypeAC = "AC"
)

// Well-known command categories for TV-style devices.
const (
	CategoryPower      = "Power"
	CategoryVolume     = "Volume"
	CategoryChannel    = "Channel"
	CategoryInput      = "Input"
	CategoryNavigation = "Navigation"
)

// Entry is a single IR command in the catalog.
//
// The AC fields are populated only for DeviceTypeAC entries: an AC code
// transmits the complete device state, so each code is annotated with
// the mode, temperature and fan speed it sets.
type Entry struct {
	ID          string `json:"id"`
	DeviceType  string `json:"device_type"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Name        string `json:"name"`
	CommandType string `json:"command_type"`
	CommandData string `json:"command_data"`
	Description string `json:"description,omitempty"`

	AcMode        *string `json:"ac_mode,omitempty"`
	AcTemperature *int    `json:"ac_temperature,omitempty"`
	AcFanSpeed    *string `json:"ac_fan_speed,omitempty"`
	AcSwing       *string `json:"ac_swing,omitempty"`

	TvInput *string `json:"tv_input,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAC reports whether the entry belongs to an air conditioner.
func (e *Entry) IsAC() bool {
	return e.DeviceType == DeviceTypeAC
}

// NormalizeDeviceType maps client-supplied device type spellings onto
// the canonical catalog values. Unrecognised values are returned
// trimmed but otherwise untouched, so lookups simply find nothing.
func NormalizeDeviceType(deviceType string) string {
	switch strings.ToLower(strings.TrimSpace(deviceType)) {
	case "ac", "aircon", "airconditioner", "air_conditioner":
		return DeviceTypeAC
	case "tv", "television":
		return DeviceTypeTV
	default:
		return strings.TrimSpace(deviceType)
	}
}
