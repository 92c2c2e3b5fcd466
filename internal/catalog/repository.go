package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for catalog persistence operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	ListByDeviceType(ctx context.Context, deviceType string) ([]Entry, error)
	ListByDeviceTypeAndCategory(ctx context.Context, deviceType, category string) ([]Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed catalog repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `id, device_type, brand, category, name, command_type, command_data,
	description, ac_mode, ac_temperature, ac_fan_speed, ac_swing, tv_input,
	created_at, updated_at`

// Create inserts a new catalog entry. A missing ID is generated.
// The stored device type is always the normalised form.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	entry.DeviceType = NormalizeDeviceType(entry.DeviceType)
	if err := ValidateEntry(entry); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = "cmd-" + uuid.NewString()[:16]
	}

	const query = `INSERT INTO ir_commands (id, device_type, brand, category, name,
		command_type, command_data, description, ac_mode, ac_temperature,
		ac_fan_speed, ac_swing, tv_input)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.DeviceType, entry.Brand, entry.Category, entry.Name,
		entry.CommandType, entry.CommandData, entry.Description,
		nullStr(entry.AcMode), nullInt(entry.AcTemperature),
		nullStr(entry.AcFanSpeed), nullStr(entry.AcSwing), nullStr(entry.TvInput))
	if err != nil {
		return fmt.Errorf("inserting catalog entry %s: %w", entry.ID, err)
	}
	return nil
}

// Get returns a single entry by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ir_commands WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanEntry(row)
}

// List returns all entries ordered by device type, brand and name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ir_commands
		ORDER BY device_type, brand, name`
	return r.queryEntries(ctx, query)
}

// ListByDeviceType returns entries for a device type. The type is
// normalised before the lookup, so "aircon" and "AC" match the same rows.
func (r *SQLiteRepository) ListByDeviceType(ctx context.Context, deviceType string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ir_commands
		WHERE device_type = ? ORDER BY brand, name`
	return r.queryEntries(ctx, query, NormalizeDeviceType(deviceType))
}

// ListByDeviceTypeAndCategory returns entries for a device type and category.
func (r *SQLiteRepository) ListByDeviceTypeAndCategory(ctx context.Context, deviceType, category string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ir_commands
		WHERE device_type = ? AND category = ? ORDER BY brand, name`
	return r.queryEntries(ctx, query, NormalizeDeviceType(deviceType), category)
}

// Update updates an existing catalog entry.
func (r *SQLiteRepository) Update(ctx context.Context, entry *Entry) error {
	entry.DeviceType = NormalizeDeviceType(entry.DeviceType)
	if err := ValidateEntry(entry); err != nil {
		return err
	}

	const query = `UPDATE ir_commands SET device_type = ?, brand = ?, category = ?,
		name = ?, command_type = ?, command_data = ?, description = ?,
		ac_mode = ?, ac_temperature = ?, ac_fan_speed = ?, ac_swing = ?, tv_input = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		entry.DeviceType, entry.Brand, entry.Category, entry.Name,
		entry.CommandType, entry.CommandData, entry.Description,
		nullStr(entry.AcMode), nullInt(entry.AcTemperature),
		nullStr(entry.AcFanSpeed), nullStr(entry.AcSwing), nullStr(entry.TvInput),
		entry.ID)
	if err != nil {
		return fmt.Errorf("updating catalog entry %s: %w", entry.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Delete removes a single entry by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM ir_commands WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting catalog entry %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// queryEntries executes a query and returns a slice of Entry.
func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}
	return entries, nil
}

// scanEntry scans a single row into an Entry (for QueryRow).
func scanEntry(row *sql.Row) (*Entry, error) {
	var e Entry
	var acMode, acFanSpeed, acSwing, tvInput sql.NullString
	var acTemperature sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.DeviceType, &e.Brand, &e.Category, &e.Name,
		&e.CommandType, &e.CommandData, &e.Description,
		&acMode, &acTemperature, &acFanSpeed, &acSwing, &tvInput,
		&createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("scanning catalog entry: %w", err)
	}
	applyNullables(&e, acMode, acTemperature, acFanSpeed, acSwing, tvInput)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

// scanEntryRow scans an entry from a Rows cursor.
func scanEntryRow(rows *sql.Rows) (*Entry, error) {
	var e Entry
	var acMode, acFanSpeed, acSwing, tvInput sql.NullString
	var acTemperature sql.NullInt64
	var createdAt, updatedAt string

	err := rows.Scan(&e.ID, &e.DeviceType, &e.Brand, &e.Category, &e.Name,
		&e.CommandType, &e.CommandData, &e.Description,
		&acMode, &acTemperature, &acFanSpeed, &acSwing, &tvInput,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	applyNullables(&e, acMode, acTemperature, acFanSpeed, acSwing, tvInput)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func applyNullables(e *Entry, acMode sql.NullString, acTemperature sql.NullInt64, acFanSpeed, acSwing, tvInput sql.NullString) {
	if acMode.Valid {
		e.AcMode = &acMode.String
	}
	if acTemperature.Valid {
		temp := int(acTemperature.Int64)
		e.AcTemperature = &temp
	}
	if acFanSpeed.Valid {
		e.AcFanSpeed = &acFanSpeed.String
	}
	if acSwing.Valid {
		e.AcSwing = &acSwing.String
	}
	if tvInput.Valid {
		e.TvInput = &tvInput.String
	}
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullInt converts a *int to a sql.NullInt64 for nullable columns.
func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// parseTime parses an RFC3339 timestamp from SQLite; zero time on failure.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // Format is controlled by the schema
	return t
}
