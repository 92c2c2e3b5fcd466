package fleet

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Delivery history event values.
const (
	HistoryEventQueued       = "queued"
	HistoryEventDelivered    = "delivered"
	HistoryEventAcknowledged = "acknowledged"
	HistoryEventDropped      = "dropped"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryEntry represents a single command delivery event.
//
// History is the only place a command id can be looked up after the command
// left its queue; the queue itself keeps no record of delivered commands.
type HistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the device the command was addressed to.
	DeviceID string `json:"device_id"`

	// CommandID is the process-wide command identifier.
	CommandID int64 `json:"command_id"`

	// Event is one of queued, delivered, acknowledged.
	Event string `json:"event"`

	// CommandType is the IR protocol of the command, where known.
	CommandType string `json:"command_type,omitempty"`

	// Description is the command's human-readable description, where known.
	Description string `json:"description,omitempty"`

	// CreatedAt is the timestamp of the event (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRecorder stores and retrieves command delivery history.
//
// Recording is best-effort: implementations must be thread-safe, and
// callers treat failures as log-worthy, never as operation failures.
type HistoryRecorder interface {
	// Record appends a delivery event.
	Record(ctx context.Context, entry HistoryEntry) error

	// GetHistory returns recent events for a device, newest first.
	// limit <= 0 selects the default page size.
	GetHistory(ctx context.Context, deviceID string, limit int) ([]HistoryEntry, error)
}

// SQLiteHistoryRepository implements HistoryRecorder using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteHistoryRepository: Repository instance ready for use
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Record appends a delivery event to the command_history table.
func (r *SQLiteHistoryRepository) Record(ctx context.Context, entry HistoryEntry) error {
	if entry.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if entry.Event == "" {
		return fmt.Errorf("event is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_history (device_id, command_id, event, command_type, description)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.DeviceID,
		entry.CommandID,
		entry.Event,
		entry.CommandType,
		entry.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting command history: %w", err)
	}
	return nil
}

// GetHistory returns recent delivery events for a device, ordered newest first.
func (r *SQLiteHistoryRepository) GetHistory(ctx context.Context, deviceID string, limit int) ([]HistoryEntry, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, command_id, event, command_type, description, created_at
		 FROM command_history
		 WHERE device_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.CommandID, &e.Event, &e.CommandType, &e.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return entries, nil
}
