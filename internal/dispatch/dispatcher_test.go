package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/roomlink/roomlink-core/internal/catalog"
	"github.com/roomlink/roomlink-core/internal/fleet"
	"github.com/roomlink/roomlink-core/internal/resolver"
	"github.com/roomlink/roomlink-core/internal/room"
)

func strPtr(s string) *string { return &s }

// fakeRooms serves rooms from a map.
type fakeRooms struct {
	rooms map[string]*room.Room
}

func (f *fakeRooms) Get(_ context.Context, id string) (*room.Room, error) {
	rm, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return rm, nil
}

// fakeCatalog backs both the resolver source and the direct-id path.
type fakeCatalog struct {
	entries []catalog.Entry
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*catalog.Entry, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, catalog.ErrEntryNotFound
}

func (f *fakeCatalog) ListByDeviceType(_ context.Context, deviceType string) ([]catalog.Entry, error) {
	var out []catalog.Entry
	for _, e := range f.entries {
		if e.DeviceType == deviceType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByDeviceTypeAndCategory(_ context.Context, deviceType, category string) ([]catalog.Entry, error) {
	var out []catalog.Entry
	for _, e := range f.entries {
		if e.DeviceType == deviceType && e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

// memHistory records history events in memory.
type memHistory struct {
	mu      sync.Mutex
	entries []fleet.HistoryEntry
}

func (m *memHistory) Record(_ context.Context, entry fleet.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memHistory) GetHistory(_ context.Context, deviceID string, _ int) ([]fleet.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []fleet.HistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].DeviceID == deviceID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memHistory) eventsFor(deviceID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.DeviceID == deviceID {
			out = append(out, e.Event)
		}
	}
	return out
}

type testEnv struct {
	dispatcher *Dispatcher
	queue      *fleet.Manager
	history    *memHistory
}

func newTestEnv(t *testing.T, rooms map[string]*room.Room, entries []catalog.Entry) *testEnv {
	t.Helper()

	cat := &fakeCatalog{entries: entries}
	queue := fleet.NewManager(0)
	history := &memHistory{}
	d := New(Deps{
		Rooms:    &fakeRooms{rooms: rooms},
		Catalog:  cat,
		Resolver: resolver.New(cat, nil),
		Queue:    queue,
		Liveness: fleet.NewTracker(fleet.DefaultOnlineWindow),
		History:  history,
	})
	return &testEnv{dispatcher: d, queue: queue, history: history}
}

func roomWithDevice(deviceID string) *room.Room {
	return &room.Room{ID: "room-1", Name: "Meeting Room", HasIRControl: true, DeviceID: strPtr(deviceID)}
}

func powerEntry() catalog.Entry {
	return catalog.Entry{
		ID: "cmd-1", DeviceType: catalog.DeviceTypeTV, Brand: "LG",
		Category: catalog.CategoryPower, Name: "Power Toggle",
		CommandType: "nec", CommandData: "0x20DF10EF", Description: "LG power",
	}
}

func TestSendToRoom(t *testing.T) {
	env := newTestEnv(t, map[string]*room.Room{"room-1": roomWithDevice("esp32-1")},
		[]catalog.Entry{powerEntry()})

	cmd, err := env.dispatcher.SendToRoom(context.Background(), "room-1", resolver.Intent{
		Type: resolver.IntentPower, RawType: "power", Value: "toggle",
	})
	if err != nil {
		t.Fatalf("SendToRoom: %v", err)
	}
	if cmd.Type != "nec" || cmd.Code != "0x20DF10EF" {
		t.Errorf("queued command %+v", cmd)
	}
	if got := env.queue.PendingCount("esp32-1"); got != 1 {
		t.Errorf("pending count = %d, want 1", got)
	}
	if events := env.history.eventsFor("esp32-1"); len(events) != 1 || events[0] != fleet.HistoryEventQueued {
		t.Errorf("history events = %v, want [queued]", events)
	}
}

func TestSendToRoom_EvictionRecordedInHistory(t *testing.T) {
	cat := &fakeCatalog{entries: []catalog.Entry{powerEntry()}}
	queue := fleet.NewManager(1)
	history := &memHistory{}
	d := New(Deps{
		Rooms:    &fakeRooms{rooms: map[string]*room.Room{"room-1": roomWithDevice("esp32-1")}},
		Catalog:  cat,
		Resolver: resolver.New(cat, nil),
		Queue:    queue,
		Liveness: fleet.NewTracker(fleet.DefaultOnlineWindow),
		History:  history,
	})

	intent := resolver.Intent{Type: resolver.IntentPower, RawType: "power", Value: "toggle"}
	first, err := d.SendToRoom(context.Background(), "room-1", intent)
	if err != nil {
		t.Fatalf("SendToRoom: %v", err)
	}
	if _, err := d.SendToRoom(context.Background(), "room-1", intent); err != nil {
		t.Fatalf("SendToRoom: %v", err)
	}

	if got := queue.PendingCount("esp32-1"); got != 1 {
		t.Errorf("pending count = %d, want 1", got)
	}

	events := history.eventsFor("esp32-1")
	want := []string{fleet.HistoryEventQueued, fleet.HistoryEventDropped, fleet.HistoryEventQueued}
	if len(events) != len(want) {
		t.Fatalf("history events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("history events = %v, want %v", events, want)
		}
	}

	for _, e := range history.entries {
		if e.Event == fleet.HistoryEventDropped && e.CommandID != first.ID {
			t.Errorf("dropped command id = %d, want %d", e.CommandID, first.ID)
		}
	}
}

func TestSendToRoom_RoomNotFound(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.dispatcher.SendToRoom(context.Background(), "missing", resolver.Intent{
		Type: resolver.IntentPower, RawType: "power", Value: "toggle",
	})
	if !errors.Is(err, room.ErrRoomNotFound) {
		t.Errorf("SendToRoom = %v, want ErrRoomNotFound", err)
	}
}

func TestSendToRoom_DeviceNotAssigned(t *testing.T) {
	rooms := map[string]*room.Room{
		"no-device": {ID: "no-device", Name: "Storage", HasIRControl: true},
		"disabled":  {ID: "disabled", Name: "Lobby", DeviceID: strPtr("esp32-9")},
	}
	env := newTestEnv(t, rooms, []catalog.Entry{powerEntry()})

	for _, roomID := range []string{"no-device", "disabled"} {
		_, err := env.dispatcher.SendToRoom(context.Background(), roomID, resolver.Intent{
			Type: resolver.IntentPower, RawType: "power", Value: "toggle",
		})
		if !errors.Is(err, ErrDeviceNotAssigned) {
			t.Errorf("room %s: err = %v, want ErrDeviceNotAssigned", roomID, err)
		}
	}

	// Nothing was ever enqueued.
	if stats := env.queue.GetStats(); stats.Enqueued != 0 || stats.Devices != 0 {
		t.Errorf("queue touched despite missing device: %+v", stats)
	}
}

func TestSendToRoom_NoMatch(t *testing.T) {
	env := newTestEnv(t, map[string]*room.Room{"room-1": roomWithDevice("esp32-1")},
		[]catalog.Entry{powerEntry()})

	_, err := env.dispatcher.SendToRoom(context.Background(), "room-1", resolver.Intent{
		Type: resolver.IntentPower, RawType: "power", Value: "hibernate",
	})
	if !errors.Is(err, resolver.ErrNoMatch) {
		t.Errorf("SendToRoom = %v, want ErrNoMatch", err)
	}
	if got := env.queue.PendingCount("esp32-1"); got != 0 {
		t.Errorf("pending count = %d, want 0 after no match", got)
	}
}

func TestSendCatalogCommand(t *testing.T) {
	env := newTestEnv(t, map[string]*room.Room{"room-1": roomWithDevice("esp32-1")},
		[]catalog.Entry{powerEntry()})

	cmd, err := env.dispatcher.SendCatalogCommand(context.Background(), "room-1", "cmd-1")
	if err != nil {
		t.Fatalf("SendCatalogCommand: %v", err)
	}
	if cmd.Code != "0x20DF10EF" || cmd.Description != "LG power" {
		t.Errorf("queued command %+v", cmd)
	}

	_, err = env.dispatcher.SendCatalogCommand(context.Background(), "room-1", "missing")
	if !errors.Is(err, catalog.ErrEntryNotFound) {
		t.Errorf("missing entry = %v, want ErrEntryNotFound", err)
	}
}

func TestStatus_NeverSeenDevice(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status := env.dispatcher.Status("never-seen")
	if status.Online {
		t.Error("never-seen device reported online")
	}
	if status.LastSeen != nil {
		t.Errorf("last seen = %v, want nil", *status.LastSeen)
	}
	if status.PendingCommands != 0 {
		t.Errorf("pending commands = %d, want 0", status.PendingCommands)
	}
}

func TestListDevices_UnionOfQueueAndLiveness(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	// Known to the queue only.
	env.dispatcher.SendToDevice(ctx, "queued-only", "nec", "0x01", "")
	// Known to liveness only.
	env.dispatcher.PollNext(ctx, "polled-only")

	devices := env.dispatcher.ListDevices()
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	if devices[0].DeviceID != "polled-only" || devices[1].DeviceID != "queued-only" {
		t.Errorf("device ids = %s, %s", devices[0].DeviceID, devices[1].DeviceID)
	}
	if devices[1].PendingCommands != 1 {
		t.Errorf("queued-only pending = %d, want 1", devices[1].PendingCommands)
	}
	if !devices[0].Online {
		t.Error("polled-only should be online right after its poll")
	}
}

func TestEndToEndDelivery(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	queued := env.dispatcher.SendToDevice(ctx, "esp32-1", "nec", "0x20DF10EF", "power")
	if queued.ID == 0 {
		t.Fatal("enqueue did not assign an id")
	}

	delivered, ok := env.dispatcher.PollNext(ctx, "esp32-1")
	if !ok {
		t.Fatal("poll returned empty, want the queued command")
	}
	if delivered.ID != queued.ID || delivered.Code != "0x20DF10EF" {
		t.Errorf("delivered %+v, want the queued command", delivered)
	}

	env.dispatcher.Acknowledge(ctx, "esp32-1", delivered.ID)

	status := env.dispatcher.Status("esp32-1")
	if !status.Online {
		t.Error("device should be online after poll and ack")
	}
	if status.PendingCommands != 0 {
		t.Errorf("pending commands = %d, want 0", status.PendingCommands)
	}
	if status.LastSeen == nil {
		t.Error("last seen not set after contact")
	}

	wantEvents := []string{fleet.HistoryEventQueued, fleet.HistoryEventDelivered, fleet.HistoryEventAcknowledged}
	events := env.history.eventsFor("esp32-1")
	if len(events) != len(wantEvents) {
		t.Fatalf("history events = %v, want %v", events, wantEvents)
	}
	for i, want := range wantEvents {
		if events[i] != want {
			t.Errorf("event %d = %q, want %q", i, events[i], want)
		}
	}
}

func TestPollNext_EmptyQueueTouchesLiveness(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, ok := env.dispatcher.PollNext(context.Background(), "esp32-1")
	if ok {
		t.Fatal("poll on empty queue returned a command")
	}

	status := env.dispatcher.Status("esp32-1")
	if !status.Online {
		t.Error("empty poll should still count as device contact")
	}
}

func TestHistory_PassThrough(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	env.dispatcher.SendToDevice(ctx, "esp32-1", "nec", "0x01", "")
	env.dispatcher.PollNext(ctx, "esp32-1")

	entries, err := env.dispatcher.History(ctx, "esp32-1", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(entries))
	}
	if entries[0].Event != fleet.HistoryEventDelivered {
		t.Errorf("newest event = %q, want delivered", entries[0].Event)
	}
}
