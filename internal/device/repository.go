package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository defines the interface for device persistence operations.
type Repository interface {
	// List returns all devices ordered by name (case-insensitive).
	List(ctx context.Context) ([]Device, error)

	// ListByLocation returns devices assigned to the named location,
	// compared case-insensitively, ordered by name.
	ListByLocation(ctx context.Context, location string) ([]Device, error)

	// GetByID returns a single device. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Device, error)

	// Create inserts a new device. Returns ErrDuplicate on ID collision.
	Create(ctx context.Context, d *Device) error

	// Update modifies an existing device. Returns ErrNotFound if absent.
	Update(ctx context.Context, d *Device) error

	// Delete removes a device by ID. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes the given devices, skipping unknown IDs, and
	// returns the number actually removed.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// DeleteAll removes every device and returns the number removed.
	DeleteAll(ctx context.Context) (int, error)

	// ExistingIDs returns the set of all device IDs.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)

	// DistinctLocations returns the distinct location names referenced by
	// devices, preserving stored casing.
	DistinctLocations(ctx context.Context) ([]string, error)

	// RenameLocation reassigns every device in oldName (case-insensitive)
	// to newName and returns the number of devices moved.
	RenameLocation(ctx context.Context, oldName, newName string) (int, error)

	// ClearManual removes the given manual reference from all devices and
	// returns the number of devices touched.
	ClearManual(ctx context.Context, filename string) (int, error)

	// Count returns the number of devices.
	Count(ctx context.Context) (int, error)

	// CountHubImported returns the number of hub-imported devices.
	CountHubImported(ctx context.Context) (int, error)

	// CountWithManual returns the number of devices with a manual assigned.
	CountWithManual(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `id, name, type, location, manufacturer, model, manual,
	hub_imported, created_at, updated_at`

// List returns all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY name COLLATE NOCASE`
	return r.queryDevices(ctx, query)
}

// ListByLocation returns devices assigned to the named location.
func (r *SQLiteRepository) ListByLocation(ctx context.Context, location string) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices
		WHERE location = ? COLLATE NOCASE ORDER BY name COLLATE NOCASE`
	return r.queryDevices(ctx, query, location)
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDeviceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}
	return devices, nil
}

// GetByID returns a single device by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`
	return scanDevice(r.db.QueryRowContext(ctx, query, id))
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	const query = `INSERT INTO devices
		(id, name, type, location, manufacturer, model, manual, hub_imported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Type, d.Location, d.Manufacturer, d.Model,
		d.Manual, boolToInt(d.HubImported))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting device %s: %w", d.ID, err)
	}
	return nil
}

// Update modifies an existing device.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	const query = `UPDATE devices SET name = ?, type = ?, location = ?,
		manufacturer = ?, model = ?, manual = ?, hub_imported = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		d.Name, d.Type, d.Location, d.Manufacturer, d.Model, d.Manual,
		boolToInt(d.HubImported), d.ID)
	if err != nil {
		return fmt.Errorf("updating device %s: %w", d.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the given devices, skipping unknown IDs.
func (r *SQLiteRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM devices WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("deleting devices: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return int(n), nil
}

// DeleteAll removes every device.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices")
	if err != nil {
		return 0, fmt.Errorf("deleting all devices: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return int(n), nil
}

// ExistingIDs returns the set of all device IDs.
func (r *SQLiteRepository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM devices")
	if err != nil {
		return nil, fmt.Errorf("querying device ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning device id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device ids: %w", err)
	}
	return ids, nil
}

// DistinctLocations returns the distinct location names referenced by devices.
func (r *SQLiteRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT location FROM devices ORDER BY location COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("querying device locations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning location name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location names: %w", err)
	}
	return names, nil
}

// RenameLocation reassigns every device in oldName to newName.
func (r *SQLiteRepository) RenameLocation(ctx context.Context, oldName, newName string) (int, error) {
	const query = `UPDATE devices SET location = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE location = ? COLLATE NOCASE`
	result, err := r.db.ExecContext(ctx, query, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("renaming location %s to %s: %w", oldName, newName, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return int(n), nil
}

// ClearManual removes the given manual reference from all devices.
func (r *SQLiteRepository) ClearManual(ctx context.Context, filename string) (int, error) {
	const query = `UPDATE devices SET manual = NULL,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE manual = ?`
	result, err := r.db.ExecContext(ctx, query, filename)
	if err != nil {
		return 0, fmt.Errorf("clearing manual %s: %w", filename, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return int(n), nil
}

// Count returns the number of devices.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM devices")
}

// CountHubImported returns the number of hub-imported devices.
func (r *SQLiteRepository) CountHubImported(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM devices WHERE hub_imported = 1")
}

// CountWithManual returns the number of devices with a manual assigned.
func (r *SQLiteRepository) CountWithManual(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM devices WHERE manual IS NOT NULL AND manual != ''")
}

func (r *SQLiteRepository) count(ctx context.Context, query string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting devices: %w", err)
	}
	return count, nil
}

// scanDevice scans a single row into a Device (for QueryRow).
func scanDevice(row *sql.Row) (*Device, error) {
	var d Device
	var manual sql.NullString
	var hubImported int
	var createdAt, updatedAt string

	err := row.Scan(&d.ID, &d.Name, &d.Type, &d.Location, &d.Manufacturer,
		&d.Model, &manual, &hubImported, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}
	finishDevice(&d, manual, hubImported, createdAt, updatedAt)
	return &d, nil
}

// scanDeviceRow scans a device from a Rows cursor.
func scanDeviceRow(rows *sql.Rows) (*Device, error) {
	var d Device
	var manual sql.NullString
	var hubImported int
	var createdAt, updatedAt string

	err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Location, &d.Manufacturer,
		&d.Model, &manual, &hubImported, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	finishDevice(&d, manual, hubImported, createdAt, updatedAt)
	return &d, nil
}

func finishDevice(d *Device, manual sql.NullString, hubImported int, createdAt, updatedAt string) {
	if manual.Valid && manual.String != "" {
		d.Manual = &manual.String
	}
	d.HubImported = hubImported != 0
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
