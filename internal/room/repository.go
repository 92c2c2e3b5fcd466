package room

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxNameLength = 100

// Repository defines the interface for room persistence operations.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed room repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ValidateRoom validates a Room before persistence.
func ValidateRoom(r *Room) error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRoom)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidRoom, maxNameLength)
	}
	if r.DeviceID != nil && strings.TrimSpace(*r.DeviceID) == "" {
		return fmt.Errorf("%w: device id cannot be blank when set", ErrInvalidRoom)
	}
	return nil
}

// Create inserts a new room. A missing ID is generated.
func (r *SQLiteRepository) Create(ctx context.Context, room *Room) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}
	if room.ID == "" {
		room.ID = "room-" + uuid.NewString()[:16]
	}

	const query = `INSERT INTO rooms (id, name, location, has_ir_control, device_id)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.Name, room.Location, room.HasIRControl, nullStr(room.DeviceID))
	if err != nil {
		return fmt.Errorf("inserting room %s: %w", room.ID, err)
	}
	return nil
}

// Get returns a single room by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Room, error) {
	const query = `SELECT id, name, location, has_ir_control, device_id, created_at, updated_at
		FROM rooms WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var rm Room
	var deviceID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&rm.ID, &rm.Name, &rm.Location, &rm.HasIRControl, &deviceID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	if deviceID.Valid {
		rm.DeviceID = &deviceID.String
	}
	rm.CreatedAt = parseTime(createdAt)
	rm.UpdatedAt = parseTime(updatedAt)
	return &rm, nil
}

// List returns all rooms ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Room, error) {
	const query = `SELECT id, name, location, has_ir_control, device_id, created_at, updated_at
		FROM rooms ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var rm Room
		var deviceID sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Location, &rm.HasIRControl, &deviceID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		if deviceID.Valid {
			rm.DeviceID = &deviceID.String
		}
		rm.CreatedAt = parseTime(createdAt)
		rm.UpdatedAt = parseTime(updatedAt)
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// Update updates an existing room record.
func (r *SQLiteRepository) Update(ctx context.Context, room *Room) error {
	if err := ValidateRoom(room); err != nil {
		return err
	}

	const query = `UPDATE rooms SET name = ?, location = ?, has_ir_control = ?, device_id = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		room.Name, room.Location, room.HasIRControl, nullStr(room.DeviceID), room.ID)
	if err != nil {
		return fmt.Errorf("updating room %s: %w", room.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a single room by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// parseTime parses an RFC3339 timestamp from SQLite; zero time on failure.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // Format is controlled by the schema
	return t
}
