package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roomlink/roomlink-core/internal/catalog"
	"github.com/roomlink/roomlink-core/internal/fleet"
	"github.com/roomlink/roomlink-core/internal/resolver"
	"github.com/roomlink/roomlink-core/internal/room"
)

// ErrDeviceNotAssigned is returned when a room exists but has no IR
// blaster assigned, or IR control is disabled for it.
var ErrDeviceNotAssigned = errors.New("room has no IR control device assigned")

// RoomSource resolves a room to its record. *room.SQLiteRepository
// satisfies it.
type RoomSource interface {
	Get(ctx context.Context, id string) (*room.Room, error)
}

// CatalogSource fetches entries for the direct-id delivery path.
// *catalog.SQLiteRepository satisfies it.
type CatalogSource interface {
	Get(ctx context.Context, id string) (*catalog.Entry, error)
}

// Logger is the minimal logging interface the dispatcher needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the collaborators a Dispatcher sequences.
type Deps struct {
	Rooms    RoomSource
	Catalog  CatalogSource
	Resolver *resolver.Resolver
	Queue    *fleet.Manager
	Liveness *fleet.Tracker
	History  fleet.HistoryRecorder
	Events   EventSink
	Metrics  Metrics
	Logger   Logger
}

// Dispatcher is the room-facing command façade.
type Dispatcher struct {
	rooms    RoomSource
	catalog  CatalogSource
	resolver *resolver.Resolver
	queue    *fleet.Manager
	liveness *fleet.Tracker
	history  fleet.HistoryRecorder
	events   EventSink
	metrics  Metrics
	logger   Logger
}

// New creates a Dispatcher. Rooms, Catalog, Resolver, Queue and
// Liveness are required; History, Events, Metrics and Logger may be nil
// and default to no-ops.
func New(deps Deps) *Dispatcher {
	if deps.Events == nil {
		deps.Events = noopEventSink{}
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = noopLogger{}
	}
	d := &Dispatcher{
		rooms:    deps.Rooms,
		catalog:  deps.Catalog,
		resolver: deps.Resolver,
		queue:    deps.Queue,
		liveness: deps.Liveness,
		history:  deps.History,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}

	// A command evicted at capacity would otherwise leave no trace beyond
	// its queued row; record the eviction so the trail stays complete.
	d.queue.SetOnDrop(func(cmd fleet.PendingCommand) {
		d.record(context.Background(), fleet.HistoryEntry{
			DeviceID:    cmd.DeviceID,
			CommandID:   cmd.ID,
			Event:       fleet.HistoryEventDropped,
			CommandType: cmd.Type,
			Description: cmd.Description,
		})
		d.metrics.CommandEvent(fleet.HistoryEventDropped, cmd.DeviceID, cmd.Type)
	})

	return d
}

// SendToRoom resolves an intent for a room's device and queues the
// resulting command. Room lookup failures, missing device assignment,
// invalid intents and resolution misses come back as sentinel errors
// the caller maps to its error shape; the command is never enqueued on
// any of them.
func (d *Dispatcher) SendToRoom(ctx context.Context, roomID string, intent resolver.Intent) (fleet.PendingCommand, error) {
	deviceID, err := d.deviceForRoom(ctx, roomID)
	if err != nil {
		return fleet.PendingCommand{}, err
	}

	resolved, err := d.resolver.Resolve(ctx, intent)
	if err != nil {
		if errors.Is(err, resolver.ErrNoMatch) {
			d.logger.Info("no matching command for room intent",
				"room_id", roomID, "device_id", deviceID,
				"intent_type", intent.RawType, "intent_value", fmt.Sprintf("%v", intent.Value))
		}
		return fleet.PendingCommand{}, err
	}

	return d.enqueue(ctx, deviceID, resolved.CommandType, resolved.Code, resolved.Description), nil
}

// SendCatalogCommand delivers a catalog entry to a room's device
// verbatim, bypassing the resolver.
func (d *Dispatcher) SendCatalogCommand(ctx context.Context, roomID, entryID string) (fleet.PendingCommand, error) {
	deviceID, err := d.deviceForRoom(ctx, roomID)
	if err != nil {
		return fleet.PendingCommand{}, err
	}

	entry, err := d.catalog.Get(ctx, entryID)
	if err != nil {
		return fleet.PendingCommand{}, err
	}

	return d.enqueue(ctx, deviceID, entry.CommandType, entry.CommandData, entry.Description), nil
}

// SendToDevice queues a command for a device directly, skipping room
// and catalog lookup. This is the raw device-level API.
func (d *Dispatcher) SendToDevice(ctx context.Context, deviceID, commandType, code, description string) fleet.PendingCommand {
	return d.enqueue(ctx, deviceID, commandType, code, description)
}

// PollNext is the device's poll operation: it counts as device contact
// whether or not a command is waiting, then hands over the queue head.
func (d *Dispatcher) PollNext(ctx context.Context, deviceID string) (fleet.PendingCommand, bool) {
	d.liveness.Touch(deviceID)

	cmd, ok := d.queue.DequeueNext(deviceID)
	if !ok {
		return fleet.PendingCommand{}, false
	}

	d.record(ctx, fleet.HistoryEntry{
		DeviceID:    deviceID,
		CommandID:   cmd.ID,
		Event:       fleet.HistoryEventDelivered,
		CommandType: cmd.Type,
		Description: cmd.Description,
	})
	d.events.CommandDelivered(deviceID, cmd)
	d.metrics.CommandEvent(fleet.HistoryEventDelivered, deviceID, cmd.Type)
	d.metrics.QueueDepth(deviceID, d.queue.PendingCount(deviceID))
	return cmd, true
}

// Acknowledge records that a device executed a command. The id is not
// correlated against what was dequeued; unknown ids are accepted.
func (d *Dispatcher) Acknowledge(ctx context.Context, deviceID string, commandID int64) {
	d.liveness.Touch(deviceID)
	d.queue.Acknowledge(deviceID, commandID)

	d.record(ctx, fleet.HistoryEntry{
		DeviceID:  deviceID,
		CommandID: commandID,
		Event:     fleet.HistoryEventAcknowledged,
	})
	d.events.CommandAcknowledged(deviceID, commandID)
	d.metrics.CommandEvent(fleet.HistoryEventAcknowledged, deviceID, "")
}

// Status reports a device's liveness and queue depth. Never-seen
// devices come back offline with a null last-seen, no error.
func (d *Dispatcher) Status(deviceID string) fleet.DeviceStatus {
	status := fleet.DeviceStatus{
		DeviceID:        deviceID,
		Online:          d.liveness.IsOnline(deviceID),
		PendingCommands: d.queue.PendingCount(deviceID),
	}
	if ts, ok := d.liveness.LastSeen(deviceID); ok {
		millis := ts.UnixMilli()
		status.LastSeen = &millis
	}
	return status
}

// ListDevices returns the status of every device either side of the
// core has ever seen: the queue manager and the liveness tracker each
// observe devices independently, so their id sets are unioned.
func (d *Dispatcher) ListDevices() []fleet.DeviceStatus {
	seen := make(map[string]struct{})
	for _, id := range d.queue.KnownIDs() {
		seen[id] = struct{}{}
	}
	for _, id := range d.liveness.KnownIDs() {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	statuses := make([]fleet.DeviceStatus, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, d.Status(id))
	}
	return statuses
}

// History returns recent delivery events for a device, newest first.
func (d *Dispatcher) History(ctx context.Context, deviceID string, limit int) ([]fleet.HistoryEntry, error) {
	if d.history == nil {
		return nil, nil
	}
	return d.history.GetHistory(ctx, deviceID, limit)
}

// deviceForRoom resolves a room id to its assigned device id.
func (d *Dispatcher) deviceForRoom(ctx context.Context, roomID string) (string, error) {
	rm, err := d.rooms.Get(ctx, roomID)
	if err != nil {
		return "", err
	}
	if !rm.HasIRControl || rm.DeviceID == nil || *rm.DeviceID == "" {
		return "", ErrDeviceNotAssigned
	}
	return *rm.DeviceID, nil
}

// enqueue queues the command and fans out the bookkeeping.
func (d *Dispatcher) enqueue(ctx context.Context, deviceID, commandType, code, description string) fleet.PendingCommand {
	cmd := d.queue.Enqueue(deviceID, commandType, code, description)

	d.record(ctx, fleet.HistoryEntry{
		DeviceID:    deviceID,
		CommandID:   cmd.ID,
		Event:       fleet.HistoryEventQueued,
		CommandType: cmd.Type,
		Description: cmd.Description,
	})
	d.events.CommandQueued(deviceID, cmd)
	d.metrics.CommandEvent(fleet.HistoryEventQueued, deviceID, cmd.Type)
	d.metrics.QueueDepth(deviceID, d.queue.PendingCount(deviceID))
	return cmd
}

// record writes a history event; failures are logged, never surfaced.
func (d *Dispatcher) record(ctx context.Context, entry fleet.HistoryEntry) {
	if d.history == nil {
		return
	}
	if err := d.history.Record(ctx, entry); err != nil {
		d.logger.Warn("recording command history failed",
			"device_id", entry.DeviceID, "command_id", entry.CommandID,
			"event", entry.Event, "error", err)
	}
}
