package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository defines the interface for location persistence operations.
type Repository interface {
	// List returns all locations ordered by name (case-insensitive).
	List(ctx context.Context) ([]Location, error)

	// GetBySlug returns a single location by slug.
	// Returns ErrNotFound if no location has that slug.
	GetBySlug(ctx context.Context, slug string) (*Location, error)

	// GetByName returns a single location by name, compared case-insensitively.
	// Returns ErrNotFound if no location has that name.
	GetByName(ctx context.Context, name string) (*Location, error)

	// Create inserts a new location.
	// Returns ErrDuplicate if a location with the same name already exists
	// (case-insensitive).
	Create(ctx context.Context, loc *Location) error

	// Update modifies an existing location's name and slug.
	// Returns ErrNotFound if the location does not exist and ErrDuplicate
	// if the new name collides with another location.
	Update(ctx context.Context, loc *Location) error

	// Delete removes a location by slug.
	// Returns ErrNotFound if the location does not exist and
	// ErrLocationInUse if any device still references its name.
	Delete(ctx context.Context, slug string) error

	// Count returns the number of locations.
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns all locations ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Location, error) {
	const query = `SELECT id, name, slug, created_at, updated_at
		FROM locations ORDER BY name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		loc, err := scanLocationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations = append(locations, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}
	return locations, nil
}

// GetBySlug returns a single location by slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Location, error) {
	const query = `SELECT id, name, slug, created_at, updated_at
		FROM locations WHERE slug = ?`
	return scanLocation(r.db.QueryRowContext(ctx, query, slug))
}

// GetByName returns a single location by name, compared case-insensitively.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Location, error) {
	const query = `SELECT id, name, slug, created_at, updated_at
		FROM locations WHERE name = ? COLLATE NOCASE`
	return scanLocation(r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)))
}

// Create inserts a new location.
func (r *SQLiteRepository) Create(ctx context.Context, loc *Location) error {
	const query = `INSERT INTO locations (id, name, slug) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, loc.ID, loc.Name, loc.Slug)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting location %s: %w", loc.Name, err)
	}
	return nil
}

// Update modifies an existing location's name and slug.
func (r *SQLiteRepository) Update(ctx context.Context, loc *Location) error {
	const query = `UPDATE locations SET name = ?, slug = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, loc.Name, loc.Slug, loc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("updating location %s: %w", loc.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a location by slug after verifying no device references it.
func (r *SQLiteRepository) Delete(ctx context.Context, slug string) error {
	loc, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	// Devices reference locations by name string, so the guard compares
	// names case-insensitively rather than joining on an id.
	var deviceCount int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE location = ? COLLATE NOCASE",
		loc.Name,
	).Scan(&deviceCount); err != nil {
		return fmt.Errorf("counting devices for location %s: %w", loc.Name, err)
	}
	if deviceCount > 0 {
		return ErrLocationInUse
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("deleting location %s: %w", slug, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of locations.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM locations").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting locations: %w", err)
	}
	return count, nil
}

// scanLocation scans a single row into a Location (for QueryRow).
func scanLocation(row *sql.Row) (*Location, error) {
	var loc Location
	var createdAt, updatedAt string

	err := row.Scan(&loc.ID, &loc.Name, &loc.Slug, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	loc.CreatedAt = parseTime(createdAt)
	loc.UpdatedAt = parseTime(updatedAt)
	return &loc, nil
}

// scanLocationRow scans a location from a Rows cursor.
func scanLocationRow(rows *sql.Rows) (*Location, error) {
	var loc Location
	var createdAt, updatedAt string

	if err := rows.Scan(&loc.ID, &loc.Name, &loc.Slug, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	loc.CreatedAt = parseTime(createdAt)
	loc.UpdatedAt = parseTime(updatedAt)
	return &loc, nil
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
