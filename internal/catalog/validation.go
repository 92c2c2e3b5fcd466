package catalog

import (
	"fmt"
	"strings"
)

const (
	maxNameLength        = 100
	maxBrandLength       = 50
	maxDescriptionLength = 255
	maxCommandDataLength = 4096

	minAcTemperature = 16
	maxAcTemperature = 30
)

// ValidateEntry validates an Entry before persistence.
func ValidateEntry(e *Entry) error {
	if strings.TrimSpace(e.DeviceType) == "" {
		return fmt.Errorf("%w: device type cannot be empty", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEntry)
	}
	if len(e.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEntry, maxNameLength)
	}
	if len(e.Brand) > maxBrandLength {
		return fmt.Errorf("%w: brand exceeds %d characters", ErrInvalidEntry, maxBrandLength)
	}
	if len(e.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidEntry, maxDescriptionLength)
	}
	if strings.TrimSpace(e.CommandType) == "" {
		return fmt.Errorf("%w: command type cannot be empty", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.CommandData) == "" {
		return fmt.Errorf("%w: command data cannot be empty", ErrInvalidEntry)
	}
	if len(e.CommandData) > maxCommandDataLength {
		return fmt.Errorf("%w: command data exceeds %d characters", ErrInvalidEntry, maxCommandDataLength)
	}
	if !e.IsAC() && (e.AcMode != nil || e.AcTemperature != nil || e.AcFanSpeed != nil || e.AcSwing != nil) {
		return fmt.Errorf("%w: ac state fields are only valid for %s entries",
			ErrInvalidEntry, DeviceTypeAC)
	}
	if e.AcTemperature != nil {
		if *e.AcTemperature < minAcTemperature || *e.AcTemperature > maxAcTemperature {
			return fmt.Errorf("%w: ac temperature must be between %d and %d",
				ErrInvalidEntry, minAcTemperature, maxAcTemperature)
		}
	}
	return nil
}
