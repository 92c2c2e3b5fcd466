package fleet

import (
	"testing"
	"time"
)

func TestTracker_OnlineWindowBoundary(t *testing.T) {
	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		online  bool
	}{
		{"just seen", 0, true},
		{"inside window", 29999 * time.Millisecond, true},
		{"exactly at window", 30000 * time.Millisecond, false},
		{"well past window", 5 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultOnlineWindow)
			tr.now = func() time.Time { return base }
			tr.Touch("esp32-1")

			tr.now = func() time.Time { return base.Add(tt.elapsed) }
			if got := tr.IsOnline("esp32-1"); got != tt.online {
				t.Errorf("IsOnline after %v = %v, want %v", tt.elapsed, got, tt.online)
			}
		})
	}
}

func TestTracker_UnknownDeviceOffline(t *testing.T) {
	tr := NewTracker(DefaultOnlineWindow)

	if tr.IsOnline("never-seen") {
		t.Error("unknown device reported online")
	}
	if _, ok := tr.LastSeen("never-seen"); ok {
		t.Error("unknown device has a last-seen timestamp")
	}
}

func TestTracker_TouchMonotonic(t *testing.T) {
	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	tr := NewTracker(DefaultOnlineWindow)
	tr.now = func() time.Time { return base }
	tr.Touch("esp32-1")

	// A clock step backwards must not regress the timestamp.
	tr.now = func() time.Time { return base.Add(-time.Minute) }
	tr.Touch("esp32-1")

	ts, ok := tr.LastSeen("esp32-1")
	if !ok {
		t.Fatal("device missing after touch")
	}
	if !ts.Equal(base) {
		t.Errorf("last seen = %v, want %v", ts, base)
	}
}

func TestTracker_KnownIDs(t *testing.T) {
	tr := NewTracker(DefaultOnlineWindow)
	tr.Touch("esp32-1")
	tr.Touch("esp32-2")
	tr.Touch("esp32-1")

	ids := tr.KnownIDs()
	if len(ids) != 2 {
		t.Fatalf("KnownIDs returned %d ids, want 2", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["esp32-1"] || !seen["esp32-2"] {
		t.Errorf("KnownIDs = %v, want both esp32-1 and esp32-2", ids)
	}
}

func TestTracker_Window(t *testing.T) {
	tr := NewTracker(45 * time.Second)
	if got := tr.Window(); got != 45*time.Second {
		t.Errorf("Window = %v, want 45s", got)
	}
}
