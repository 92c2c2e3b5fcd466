package fleet

import (
	"sync"
	"time"
)

// DefaultOnlineWindow is the liveness window used when none is configured.
// A device is online iff its last contact is strictly more recent than this.
const DefaultOnlineWindow = 30 * time.Second

// Tracker records the last contact time of each device and derives
// online/offline status from it.
//
// Liveness is purely heuristic: it only reflects how recently a device
// polled or acknowledged, and it never forgets a device once seen.
//
// All methods are safe for concurrent use.
type Tracker struct {
	window   time.Duration
	mu       sync.RWMutex
	lastSeen map[string]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker creates a Tracker with the given online window.
// A non-positive window falls back to DefaultOnlineWindow.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultOnlineWindow
	}
	return &Tracker{
		window:   window,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Touch records device contact at the current time.
//
// Touch is monotonic: a stored timestamp never moves backwards, so
// concurrent touches cannot make a device appear less recently seen.
func (t *Tracker) Touch(deviceID string) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.lastSeen[deviceID]; ok && existing.After(now) {
		return
	}
	t.lastSeen[deviceID] = now
}

// LastSeen returns the last contact time for the device.
// The second return value is false if the device has never been seen.
func (t *Tracker) LastSeen(deviceID string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.lastSeen[deviceID]
	return ts, ok
}

// IsOnline reports whether the device contacted the server within the
// online window. The comparison is strict: exactly window-old contact
// counts as offline. Unknown devices are offline.
func (t *Tracker) IsOnline(deviceID string) bool {
	ts, ok := t.LastSeen(deviceID)
	if !ok {
		return false
	}
	return t.now().Sub(ts) < t.window
}

// KnownIDs returns every device identifier the tracker has ever seen.
func (t *Tracker) KnownIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.lastSeen))
	for id := range t.lastSeen {
		ids = append(ids, id)
	}
	return ids
}

// Window returns the configured online window.
func (t *Tracker) Window() time.Duration {
	return t.window
}
