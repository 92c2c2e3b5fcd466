package resolver

import (
	"strconv"

	"github.com/roomlink/roomlink-core/internal/catalog"
)

// IntentType enumerates the closed set of intent kinds the resolver
// understands. Unrecognised strings become IntentUnknown, which falls
// back to name matching against the original string.
type IntentType string

const (
	IntentPower      IntentType = "power"
	IntentVolume     IntentType = "volume"
	IntentMute       IntentType = "mute"
	IntentChannel    IntentType = "channel"
	IntentSource     IntentType = "source"
	IntentDirection  IntentType = "direction"
	IntentMenu       IntentType = "menu"
	IntentRaw        IntentType = "raw"
	IntentAcComplete IntentType = "ac_complete"
	IntentUnknown    IntentType = "unknown"
)

// ParseIntentType maps a request string onto the closed intent set.
func ParseIntentType(s string) IntentType {
	switch IntentType(s) {
	case IntentPower, IntentVolume, IntentMute, IntentChannel, IntentSource,
		IntentDirection, IntentMenu, IntentRaw, IntentAcComplete:
		return IntentType(s)
	default:
		return IntentUnknown
	}
}

// Intent is an abstract command request, not yet tied to an IR code.
type Intent struct {
	// Type is the parsed intent kind.
	Type IntentType

	// RawType preserves the request's original type string so unknown
	// intents can still be matched by name and logged faithfully.
	RawType string

	// Value carries the intent payload: a string for most types, or a
	// map for ac_complete (coerced by CoerceAcState).
	Value any

	// Description overrides the catalog entry's description when set.
	Description string

	// Brand narrows the candidate set when at least one entry matches.
	Brand string
}

// categoryFor returns the catalog category an intent type searches in.
// ok is false for types that search the whole device-type candidate set.
func categoryFor(t IntentType) (string, bool) {
	switch t {
	case IntentPower:
		return catalog.CategoryPower, true
	case IntentVolume, IntentMute:
		return catalog.CategoryVolume, true
	case IntentChannel:
		return catalog.CategoryChannel, true
	case IntentSource:
		return catalog.CategoryInput, true
	case IntentDirection, IntentMenu:
		return catalog.CategoryNavigation, true
	default:
		return "", false
	}
}

// AC state defaults applied whenever a field is missing or malformed.
const (
	defaultAcMode        = "cool"
	defaultAcTemperature = 22
	defaultAcFanSpeed    = 2
)

// AcState is the normalised air-conditioner target state.
type AcState struct {
	Power       bool
	Mode        string
	Temperature int
	FanSpeed    int
}

// defaultAcState is what a malformed or absent payload coerces to.
func defaultAcState() AcState {
	return AcState{
		Power:       true,
		Mode:        defaultAcMode,
		Temperature: defaultAcTemperature,
		FanSpeed:    defaultAcFanSpeed,
	}
}

// CoerceAcState converts an arbitrary ac_complete payload into an
// AcState. The function is total: any shape it cannot interpret, in
// whole or per field, collapses to the documented defaults rather than
// erroring.
func CoerceAcState(value any) AcState {
	m, ok := value.(map[string]any)
	if !ok {
		return defaultAcState()
	}

	state := defaultAcState()
	if power, ok := m["power"].(bool); ok {
		state.Power = power
	}
	if mode, ok := m["mode"].(string); ok && mode != "" {
		state.Mode = mode
	}
	state.Temperature = coerceInt(m["temperature"], defaultAcTemperature)
	state.FanSpeed = coerceInt(m["fanSpeed"], defaultAcFanSpeed)
	return state
}

// coerceInt interprets numbers and numeric strings; anything else
// yields the fallback.
func coerceInt(v any, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
