package location

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the locations and
// devices tables (devices are needed for the delete guard).
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE,
			slug TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Other',
			location TEXT NOT NULL DEFAULT 'Unknown',
			manufacturer TEXT NOT NULL DEFAULT 'Unknown',
			model TEXT NOT NULL DEFAULT 'Unknown',
			manual TEXT,
			hub_imported INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		INSERT INTO locations (id, name, slug) VALUES
			('loc-1', 'Kitchen', 'kitchen'),
			('loc-2', 'Büro', 'buero');
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestListOrdersByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	locations, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("List() returned %d locations, want 2", len(locations))
	}
	if locations[0].Name != "Büro" || locations[1].Name != "Kitchen" {
		t.Errorf("List() order = [%s, %s], want [Büro, Kitchen]",
			locations[0].Name, locations[1].Name)
	}
}

func TestGetBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	loc, err := repo.GetBySlug(context.Background(), "buero")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if loc.Name != "Büro" {
		t.Errorf("GetBySlug(buero).Name = %q, want Büro", loc.Name)
	}

	if _, err := repo.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetByNameCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	loc, err := repo.GetByName(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("GetByName(kitchen) error = %v", err)
	}
	if loc.Slug != "kitchen" {
		t.Errorf("GetByName(kitchen).Slug = %q, want kitchen", loc.Slug)
	}
}

func TestCreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &Location{ID: "loc-3", Name: "KITCHEN", Slug: "kitchen"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create(KITCHEN) error = %v, want ErrDuplicate", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("location count after rejected duplicate = %d, want 2", count)
	}
}

func TestCreateAllowsSlugCollision(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	// "Buero" is a distinct name from "Büro" but slugifies identically.
	// The collision is accepted by design.
	err := repo.Create(context.Background(), &Location{ID: "loc-3", Name: "Buero", Slug: "buero"})
	if err != nil {
		t.Fatalf("Create(Buero) error = %v, want nil (slug collision accepted)", err)
	}
}

func TestUpdateRename(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	err := repo.Update(ctx, &Location{ID: "loc-2", Name: "Office", Slug: "office"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	loc, err := repo.GetBySlug(ctx, "office")
	if err != nil {
		t.Fatalf("GetBySlug(office) error = %v", err)
	}
	if loc.Name != "Office" {
		t.Errorf("renamed location name = %q, want Office", loc.Name)
	}

	if err := repo.Update(ctx, &Location{ID: "loc-2", Name: "kitchen", Slug: "kitchen"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Update() to existing name error = %v, want ErrDuplicate", err)
	}

	if err := repo.Update(ctx, &Location{ID: "missing", Name: "X", Slug: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() on missing id error = %v, want ErrNotFound", err)
	}
}

func TestDeleteGuardsReferencedLocation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	// Assign a device to Kitchen (different case to exercise the
	// case-insensitive guard).
	if _, err := db.Exec(
		`INSERT INTO devices (id, name, location) VALUES ('dev-1', 'Toaster', 'kitchen')`,
	); err != nil {
		t.Fatalf("failed to insert device: %v", err)
	}

	if err := repo.Delete(ctx, "kitchen"); !errors.Is(err, ErrLocationInUse) {
		t.Fatalf("Delete(referenced) error = %v, want ErrLocationInUse", err)
	}

	// The location list must be unchanged after the rejected delete.
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("location count after rejected delete = %d, want 2", count)
	}

	// Removing the device unblocks deletion.
	if _, err := db.Exec(`DELETE FROM devices WHERE id = 'dev-1'`); err != nil {
		t.Fatalf("failed to delete device: %v", err)
	}
	if err := repo.Delete(ctx, "kitchen"); err != nil {
		t.Errorf("Delete(unreferenced) error = %v, want nil", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
