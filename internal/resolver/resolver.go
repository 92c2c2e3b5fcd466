package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roomlink/roomlink-core/internal/catalog"
)

var (
	// ErrNoMatch is returned when no catalog entry satisfies the intent.
	ErrNoMatch = errors.New("no matching command")

	// ErrInvalidIntent is returned when the intent payload is unusable.
	ErrInvalidIntent = errors.New("invalid intent payload")
)

// Source is the read-only view of the command catalog the resolver
// queries. *catalog.SQLiteRepository satisfies it.
type Source interface {
	ListByDeviceType(ctx context.Context, deviceType string) ([]catalog.Entry, error)
	ListByDeviceTypeAndCategory(ctx context.Context, deviceType, category string) ([]catalog.Entry, error)
}

// Logger is the minimal logging interface the resolver needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Resolved is the concrete command a successful resolution produces.
// Entry is nil for raw passthrough, which never consults the catalog.
type Resolved struct {
	CommandType string
	Code        string
	Description string
	Entry       *catalog.Entry
}

// All intents except ac_complete search TV entries. Per-device type
// selection would need the room to know its appliance type, which the
// data model does not carry yet.
const defaultDeviceType = catalog.DeviceTypeTV

// Volume and channel intents always step upward. Deriving the
// direction from a tracked previous level is unimplemented.
const fixedDirection = "Up"

// Resolver selects at most one catalog entry for an intent.
type Resolver struct {
	source Source
	logger Logger
}

// New creates a Resolver backed by the given catalog source.
func New(source Source, logger Logger) *Resolver {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve applies the per-type matching rules and returns the selected
// entry as a deliverable command. ErrNoMatch means the catalog holds
// nothing suitable; ErrInvalidIntent means the request itself was
// unusable. Catalog I/O failures propagate as wrapped errors.
func (r *Resolver) Resolve(ctx context.Context, intent Intent) (*Resolved, error) {
	if intent.RawType == "" {
		return nil, fmt.Errorf("%w: type is required", ErrInvalidIntent)
	}
	if intent.Value == nil {
		return nil, fmt.Errorf("%w: value is required", ErrInvalidIntent)
	}

	switch intent.Type {
	case IntentRaw:
		return r.resolveRaw(intent)
	case IntentAcComplete:
		return r.resolveAcComplete(ctx, intent)
	default:
		return r.resolveByName(ctx, intent)
	}
}

// resolveRaw passes the literal payload through as the delivered code,
// stripping one layer of surrounding brackets.
func (r *Resolver) resolveRaw(intent Intent) (*Resolved, error) {
	code := valueString(intent.Value)
	hasOpen := strings.HasPrefix(code, "[")
	hasClose := strings.HasSuffix(code, "]")
	if hasOpen != hasClose {
		return nil, fmt.Errorf("%w: unbalanced brackets in raw command", ErrInvalidIntent)
	}
	if hasOpen {
		code = code[1 : len(code)-1]
	}
	return &Resolved{
		CommandType: "raw",
		Code:        code,
		Description: intent.Description,
	}, nil
}

// resolveByName covers every catalog-searching intent except ac_complete.
func (r *Resolver) resolveByName(ctx context.Context, intent Intent) (*Resolved, error) {
	candidates, err := r.candidates(ctx, intent)
	if err != nil {
		return nil, err
	}
	candidates = narrowByBrand(candidates, intent.Brand)

	value := valueString(intent.Value)
	entry := matchFirst(candidates, matcherFor(intent.Type, value))
	if entry == nil {
		r.logger.Info("no catalog entry matched intent",
			"type", intent.RawType, "value", value, "candidates", len(candidates))
		return nil, ErrNoMatch
	}
	return resolvedFrom(entry, intent.Description), nil
}

// candidates fetches the search set for an intent: the category slice
// when the type maps to one, the whole device type otherwise.
func (r *Resolver) candidates(ctx context.Context, intent Intent) ([]catalog.Entry, error) {
	if category, ok := categoryFor(intent.Type); ok {
		entries, err := r.source.ListByDeviceTypeAndCategory(ctx, defaultDeviceType, category)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s entries: %w", defaultDeviceType, category, err)
		}
		return entries, nil
	}
	entries, err := r.source.ListByDeviceType(ctx, defaultDeviceType)
	if err != nil {
		return nil, fmt.Errorf("listing %s entries: %w", defaultDeviceType, err)
	}
	return entries, nil
}

// matcherFor returns the per-type predicate applied to each candidate.
func matcherFor(t IntentType, value string) func(*catalog.Entry) bool {
	lower := strings.ToLower(value)
	switch t {
	case IntentSource:
		return func(e *catalog.Entry) bool {
			return e.TvInput != nil && strings.EqualFold(*e.TvInput, value)
		}
	case IntentDirection, IntentMenu:
		return func(e *catalog.Entry) bool {
			name := strings.ToLower(e.Name)
			return name == lower || strings.Contains(name, lower)
		}
	case IntentVolume:
		needle := "volume " + strings.ToLower(fixedDirection)
		return func(e *catalog.Entry) bool {
			return strings.Contains(strings.ToLower(e.Name), needle)
		}
	case IntentChannel:
		needle := "channel " + strings.ToLower(fixedDirection)
		return func(e *catalog.Entry) bool {
			return strings.Contains(strings.ToLower(e.Name), needle)
		}
	default:
		// power, mute and unknown types all match by name containment.
		return func(e *catalog.Entry) bool {
			return strings.Contains(strings.ToLower(e.Name), lower)
		}
	}
}

// resolveAcComplete selects the AC entry closest to the requested state
// using a four-step fallback ladder. The brand filter does not apply:
// AC codes encode full state and the taught set is assumed homogeneous.
func (r *Resolver) resolveAcComplete(ctx context.Context, intent Intent) (*Resolved, error) {
	state := CoerceAcState(intent.Value)

	entries, err := r.source.ListByDeviceType(ctx, catalog.DeviceTypeAC)
	if err != nil {
		return nil, fmt.Errorf("listing AC entries: %w", err)
	}

	entry := selectAcEntry(entries, state)
	if entry == nil {
		r.logger.Info("no AC entry matched target state",
			"mode", state.Mode, "temperature", state.Temperature,
			"fanSpeed", state.FanSpeed, "candidates", len(entries))
		return nil, ErrNoMatch
	}
	r.logger.Debug("resolved AC state to catalog entry",
		"entry", entry.ID, "temperature", state.Temperature, "fanSpeed", state.FanSpeed)
	return resolvedFrom(entry, intent.Description), nil
}

// selectAcEntry walks the fallback ladder:
//  1. exact temperature, compatible mode, exact fan speed
//  2. exact temperature, compatible mode, any fan speed
//  3. closest temperature among entries with the exact fan speed
//  4. closest temperature among all entries with a temperature
//
// Ties on temperature distance keep the first entry encountered.
func selectAcEntry(entries []catalog.Entry, state AcState) *catalog.Entry {
	fanSpeed := strconv.Itoa(state.FanSpeed)

	modeCompatible := func(e *catalog.Entry) bool {
		return e.AcMode == nil || strings.EqualFold(*e.AcMode, state.Mode)
	}

	if e := matchFirst(entries, func(e *catalog.Entry) bool {
		return e.AcTemperature != nil && *e.AcTemperature == state.Temperature &&
			modeCompatible(e) &&
			e.AcFanSpeed != nil && *e.AcFanSpeed == fanSpeed
	}); e != nil {
		return e
	}

	if e := matchFirst(entries, func(e *catalog.Entry) bool {
		return e.AcTemperature != nil && *e.AcTemperature == state.Temperature &&
			modeCompatible(e)
	}); e != nil {
		return e
	}

	if e := closestTemperature(entries, state.Temperature, func(e *catalog.Entry) bool {
		return e.AcFanSpeed != nil && *e.AcFanSpeed == fanSpeed
	}); e != nil {
		return e
	}

	return closestTemperature(entries, state.Temperature, func(*catalog.Entry) bool {
		return true
	})
}

// closestTemperature returns the entry with minimum |acTemperature - target|
// among those with a temperature that satisfy keep; first wins on ties.
func closestTemperature(entries []catalog.Entry, target int, keep func(*catalog.Entry) bool) *catalog.Entry {
	var best *catalog.Entry
	bestDist := 0
	for i := range entries {
		e := &entries[i]
		if e.AcTemperature == nil || !keep(e) {
			continue
		}
		dist := *e.AcTemperature - target
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	return best
}

// narrowByBrand keeps only the preferred brand's entries, but only when
// that leaves something to match against.
func narrowByBrand(entries []catalog.Entry, brand string) []catalog.Entry {
	if brand == "" {
		return entries
	}
	var narrowed []catalog.Entry
	for _, e := range entries {
		if e.Brand == brand {
			narrowed = append(narrowed, e)
		}
	}
	if len(narrowed) == 0 {
		return entries
	}
	return narrowed
}

// matchFirst returns the first entry satisfying the predicate.
func matchFirst(entries []catalog.Entry, match func(*catalog.Entry) bool) *catalog.Entry {
	for i := range entries {
		if match(&entries[i]) {
			return &entries[i]
		}
	}
	return nil
}

// resolvedFrom builds the deliverable command, preferring the request's
// description over the entry's when one was supplied.
func resolvedFrom(entry *catalog.Entry, description string) *Resolved {
	if description == "" {
		description = entry.Description
	}
	return &Resolved{
		CommandType: entry.CommandType,
		Code:        entry.CommandData,
		Description: description,
		Entry:       entry,
	}
}

// valueString renders an intent value for name matching.
func valueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
