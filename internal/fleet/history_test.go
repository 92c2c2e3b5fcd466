package fleet

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupHistoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE command_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id  TEXT NOT NULL,
			command_id INTEGER NOT NULL,
			event      TEXT NOT NULL,
			command_type TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		)
	`)
	if err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func TestSQLiteHistoryRepository_RecordAndGet(t *testing.T) {
	repo := NewSQLiteHistoryRepository(setupHistoryDB(t))
	ctx := context.Background()

	events := []HistoryEntry{
		{DeviceID: "esp32-1", CommandID: 1, Event: HistoryEventQueued, CommandType: "nec", Description: "power"},
		{DeviceID: "esp32-1", CommandID: 1, Event: HistoryEventDelivered, CommandType: "nec", Description: "power"},
		{DeviceID: "esp32-1", CommandID: 1, Event: HistoryEventAcknowledged},
		{DeviceID: "esp32-2", CommandID: 2, Event: HistoryEventQueued, CommandType: "raw"},
	}
	for _, e := range events {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s/%s): %v", e.DeviceID, e.Event, err)
		}
	}

	entries, err := repo.GetHistory(ctx, "esp32-1", 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	// Newest first.
	wantEvents := []string{HistoryEventAcknowledged, HistoryEventDelivered, HistoryEventQueued}
	for i, want := range wantEvents {
		if entries[i].Event != want {
			t.Errorf("entry %d event = %q, want %q", i, entries[i].Event, want)
		}
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestSQLiteHistoryRepository_GetHistoryLimit(t *testing.T) {
	repo := NewSQLiteHistoryRepository(setupHistoryDB(t))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		entry := HistoryEntry{
			DeviceID:  "esp32-1",
			CommandID: int64(i + 1),
			Event:     HistoryEventQueued,
		}
		if err := repo.Record(ctx, entry); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	entries, err := repo.GetHistory(ctx, "esp32-1", 4)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0].CommandID != 10 {
		t.Errorf("newest command id = %d, want 10", entries[0].CommandID)
	}
}

func TestSQLiteHistoryRepository_LimitClamped(t *testing.T) {
	repo := NewSQLiteHistoryRepository(setupHistoryDB(t))
	ctx := context.Background()

	for i := 0; i < maxHistoryLimit+20; i++ {
		entry := HistoryEntry{
			DeviceID:  "esp32-1",
			CommandID: int64(i + 1),
			Event:     HistoryEventQueued,
		}
		if err := repo.Record(ctx, entry); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	entries, err := repo.GetHistory(ctx, "esp32-1", 100000)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != maxHistoryLimit {
		t.Errorf("got %d entries, want %d", len(entries), maxHistoryLimit)
	}
}

func TestSQLiteHistoryRepository_Validation(t *testing.T) {
	repo := NewSQLiteHistoryRepository(setupHistoryDB(t))
	ctx := context.Background()

	if err := repo.Record(ctx, HistoryEntry{Event: HistoryEventQueued}); err == nil {
		t.Error("Record without device id should fail")
	}
	if err := repo.Record(ctx, HistoryEntry{DeviceID: "esp32-1"}); err == nil {
		t.Error("Record without event should fail")
	}
	if _, err := repo.GetHistory(ctx, "", 10); err == nil {
		t.Error("GetHistory without device id should fail")
	}
}

func TestSQLiteHistoryRepository_EmptyHistory(t *testing.T) {
	repo := NewSQLiteHistoryRepository(setupHistoryDB(t))

	entries, err := repo.GetHistory(context.Background(), "never-seen", 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for unknown device, want 0", len(entries))
	}
}
