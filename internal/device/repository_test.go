package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
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

		INSERT INTO devices (id, name, type, location, manufacturer, model, manual, hub_imported) VALUES
			('dev-1', 'Ceiling Light', 'Lighting', 'Living Room', 'Philips', 'Hue White', NULL, 1),
			('dev-2', 'Dishwasher', 'Other', 'Kitchen', 'Bosch', 'SMS4HVI33E', 'bosch_sms4.pdf', 0),
			('dev-3', 'Air Purifier', 'Other', 'living room', 'Xiaomi', 'Mi 3H', 'bosch_sms4.pdf', 0);
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

	devices, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("List() returned %d devices, want 3", len(devices))
	}
	if devices[0].Name != "Air Purifier" || devices[2].Name != "Dishwasher" {
		t.Errorf("List() order = [%s, %s, %s], want Air Purifier first",
			devices[0].Name, devices[1].Name, devices[2].Name)
	}
}

func TestListByLocationCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	devices, err := repo.ListByLocation(context.Background(), "LIVING ROOM")
	if err != nil {
		t.Fatalf("ListByLocation() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("ListByLocation(LIVING ROOM) returned %d devices, want 2", len(devices))
	}
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	d, err := repo.GetByID(context.Background(), "dev-2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if d.Name != "Dishwasher" {
		t.Errorf("GetByID(dev-2).Name = %q, want Dishwasher", d.Name)
	}
	if !d.HasManual() || *d.Manual != "bosch_sms4.pdf" {
		t.Errorf("GetByID(dev-2).Manual = %v, want bosch_sms4.pdf", d.Manual)
	}
	if d.HubImported {
		t.Error("GetByID(dev-2).HubImported = true, want false")
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateAndDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	d := &Device{
		ID:           "dev-4",
		Name:         "Thermostat",
		Type:         TypeClimate,
		Location:     "Hallway",
		Manufacturer: "tado",
		Model:        "V3+",
		HubImported:  true,
	}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-4")
	if err != nil {
		t.Fatalf("GetByID() after create error = %v", err)
	}
	if !got.HubImported {
		t.Error("created device lost hub_imported flag")
	}

	if err := repo.Create(ctx, d); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	d, err := repo.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	d.Location = "Bedroom"
	manual := "hue_white.pdf"
	d.Manual = &manual

	if err := repo.Update(ctx, d); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if got.Location != "Bedroom" {
		t.Errorf("updated location = %q, want Bedroom", got.Location)
	}
	if !got.HasManual() || *got.Manual != "hue_white.pdf" {
		t.Errorf("updated manual = %v, want hue_white.pdf", got.Manual)
	}

	missing := &Device{ID: "missing", Name: "X"}
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	// Unknown IDs are skipped, not errors.
	n, err := repo.DeleteMany(ctx, []string{"dev-1", "dev-3", "missing"})
	if err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteMany() removed %d, want 2", n)
	}

	n, err = repo.DeleteMany(ctx, nil)
	if err != nil {
		t.Fatalf("DeleteMany(nil) error = %v", err)
	}
	if n != 0 {
		t.Errorf("DeleteMany(nil) removed %d, want 0", n)
	}
}

func TestDeleteAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	n, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteAll() removed %d, want 3", n)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", count)
	}
}

func TestExistingIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	ids, err := repo.ExistingIDs(context.Background())
	if err != nil {
		t.Fatalf("ExistingIDs() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("ExistingIDs() returned %d ids, want 3", len(ids))
	}
	if _, ok := ids["dev-2"]; !ok {
		t.Error("ExistingIDs() missing dev-2")
	}
}

func TestRenameLocation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	// Both "Living Room" and "living room" devices move.
	n, err := repo.RenameLocation(ctx, "living room", "Lounge")
	if err != nil {
		t.Fatalf("RenameLocation() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RenameLocation() moved %d devices, want 2", n)
	}

	devices, err := repo.ListByLocation(ctx, "Lounge")
	if err != nil {
		t.Fatalf("ListByLocation() error = %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("Lounge has %d devices after rename, want 2", len(devices))
	}
}

func TestClearManual(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	n, err := repo.ClearManual(ctx, "bosch_sms4.pdf")
	if err != nil {
		t.Fatalf("ClearManual() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ClearManual() touched %d devices, want 2", n)
	}

	d, err := repo.GetByID(ctx, "dev-2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if d.HasManual() {
		t.Errorf("device still references manual %v after clear", d.Manual)
	}
}

func TestCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3", total)
	}

	imported, err := repo.CountHubImported(ctx)
	if err != nil {
		t.Fatalf("CountHubImported() error = %v", err)
	}
	if imported != 1 {
		t.Errorf("CountHubImported() = %d, want 1", imported)
	}

	withManual, err := repo.CountWithManual(ctx)
	if err != nil {
		t.Fatalf("CountWithManual() error = %v", err)
	}
	if withManual != 2 {
		t.Errorf("CountWithManual() = %d, want 2", withManual)
	}
}

func TestDistinctLocations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	names, err := repo.DistinctLocations(context.Background())
	if err != nil {
		t.Fatalf("DistinctLocations() error = %v", err)
	}
	// "Living Room" and "living room" are distinct stored strings.
	if len(names) != 3 {
		t.Errorf("DistinctLocations() = %v, want 3 entries", names)
	}
}
