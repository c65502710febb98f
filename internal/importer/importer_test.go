package importer

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/hub"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
)

// fakeHub returns canned discovery results.
type fakeHub struct {
	devices []hub.NormalizedDevice
	areas   []hub.Area
}

func (f *fakeHub) ListDevices(ctx context.Context) []hub.NormalizedDevice { return f.devices }
func (f *fakeHub) ListAreas(ctx context.Context) []hub.Area               { return f.areas }

func setupService(t *testing.T, h Discoverer) (*Service, device.Repository, location.Repository) {
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
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	devices := device.NewSQLiteRepository(db)
	locations := location.NewSQLiteRepository(db)
	return New(h, devices, locations, logging.Default()), devices, locations
}

func TestImportAreasIsAdditive(t *testing.T) {
	h := &fakeHub{areas: []hub.Area{
		{Name: "Kitchen"},
		{Name: " Bedroom "},
		{Name: ""},
	}}
	svc, _, locations := setupService(t, h)
	ctx := context.Background()

	// Pre-existing location with different case must not be duplicated.
	if err := locations.Create(ctx, &location.Location{
		ID: "loc-1", Name: "KITCHEN", Slug: "kitchen",
	}); err != nil {
		t.Fatalf("seeding location: %v", err)
	}

	added, err := svc.ImportAreas(ctx)
	if err != nil {
		t.Fatalf("ImportAreas() error = %v", err)
	}
	if added != 1 {
		t.Errorf("ImportAreas() added = %d, want 1 (Bedroom only)", added)
	}

	all, err := locations.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("location count = %d, want 2", len(all))
	}
}

func TestImportAreasSkipsOnEmptyDiscovery(t *testing.T) {
	svc, _, locations := setupService(t, &fakeHub{})
	ctx := context.Background()

	if err := locations.Create(ctx, &location.Location{
		ID: "loc-1", Name: "Kitchen", Slug: "kitchen",
	}); err != nil {
		t.Fatalf("seeding location: %v", err)
	}

	added, err := svc.ImportAreas(ctx)
	if err != nil {
		t.Fatalf("ImportAreas() error = %v", err)
	}
	if added != 0 {
		t.Errorf("ImportAreas() added = %d, want 0", added)
	}

	count, err := locations.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("location count after empty discovery = %d, want 1 (nothing deleted)", count)
	}
}

func TestImportDevicesIdempotent(t *testing.T) {
	h := &fakeHub{devices: []hub.NormalizedDevice{
		{ID: "dev-1", Name: "Ceiling Light", Type: "Lighting",
			Location: "Living Room", Manufacturer: "Philips", Model: "Hue"},
		{ID: "dev-2", Name: "Thermostat", Type: "Climate",
			Location: "Hallway", Manufacturer: "tado", Model: "V3"},
	}}
	svc, devices, locations := setupService(t, h)
	ctx := context.Background()

	imported, err := svc.ImportDevices(ctx)
	if err != nil {
		t.Fatalf("ImportDevices() error = %v", err)
	}
	if imported != 2 {
		t.Fatalf("first ImportDevices() = %d, want 2", imported)
	}

	// Imported devices carry provenance and their locations now exist.
	d, err := devices.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !d.HubImported {
		t.Error("imported device missing hub_imported flag")
	}
	if _, err := locations.GetByName(ctx, "Living Room"); err != nil {
		t.Errorf("location Living Room not ensured: %v", err)
	}

	// Second import is a no-op.
	imported, err = svc.ImportDevices(ctx)
	if err != nil {
		t.Fatalf("second ImportDevices() error = %v", err)
	}
	if imported != 0 {
		t.Errorf("second ImportDevices() = %d, want 0", imported)
	}
}

func TestImportDevicesPreservesLocalEdits(t *testing.T) {
	h := &fakeHub{devices: []hub.NormalizedDevice{
		{ID: "dev-1", Name: "Ceiling Light", Type: "Lighting", Location: "Living Room"},
	}}
	svc, devices, _ := setupService(t, h)
	ctx := context.Background()

	if _, err := svc.ImportDevices(ctx); err != nil {
		t.Fatalf("ImportDevices() error = %v", err)
	}

	// User renames the device and assigns a manual.
	d, err := devices.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	d.Name = "Reading Lamp"
	manual := "hue.pdf"
	d.Manual = &manual
	if err := devices.Update(ctx, d); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := svc.ImportDevices(ctx); err != nil {
		t.Fatalf("re-import error = %v", err)
	}

	got, err := devices.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID() after re-import error = %v", err)
	}
	if got.Name != "Reading Lamp" || !got.HasManual() {
		t.Errorf("re-import clobbered local edits: %+v", got)
	}
}

func TestImportWithNilHub(t *testing.T) {
	svc, _, _ := setupService(t, nil)
	ctx := context.Background()

	if n, err := svc.ImportDevices(ctx); err != nil || n != 0 {
		t.Errorf("ImportDevices() with nil hub = (%d, %v), want (0, nil)", n, err)
	}
	if n, err := svc.ImportAreas(ctx); err != nil || n != 0 {
		t.Errorf("ImportAreas() with nil hub = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSeedLocations(t *testing.T) {
	svc, devices, locations := setupService(t, nil)
	ctx := context.Background()

	for _, d := range []*device.Device{
		{ID: "d1", Name: "A", Location: "Kitchen", Type: "Other", Manufacturer: "x", Model: "x"},
		{ID: "d2", Name: "B", Location: "kitchen", Type: "Other", Manufacturer: "x", Model: "x"},
		{ID: "d3", Name: "C", Location: "Bedroom", Type: "Other", Manufacturer: "x", Model: "x"},
	} {
		if err := devices.Create(ctx, d); err != nil {
			t.Fatalf("seeding device: %v", err)
		}
	}

	if err := svc.SeedLocations(ctx); err != nil {
		t.Fatalf("SeedLocations() error = %v", err)
	}

	all, err := locations.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("seeded %d locations, want 2 (case-insensitive dedupe)", len(all))
	}

	// A non-empty store is never reseeded.
	if err := devices.Create(ctx, &device.Device{
		ID: "d4", Name: "D", Location: "Garage", Type: "Other", Manufacturer: "x", Model: "x",
	}); err != nil {
		t.Fatalf("adding device: %v", err)
	}
	if err := svc.SeedLocations(ctx); err != nil {
		t.Fatalf("second SeedLocations() error = %v", err)
	}
	count, err := locations.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("location count after second seed = %d, want 2", count)
	}
}

func TestEnsureLocation(t *testing.T) {
	svc, _, locations := setupService(t, nil)
	ctx := context.Background()

	if err := svc.EnsureLocation(ctx, "Büro"); err != nil {
		t.Fatalf("EnsureLocation() error = %v", err)
	}
	loc, err := locations.GetByName(ctx, "Büro")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if loc.Slug != "buero" {
		t.Errorf("ensured location slug = %q, want buero", loc.Slug)
	}

	// Matching name with different case is a no-op.
	if err := svc.EnsureLocation(ctx, "büro"); err != nil {
		t.Fatalf("EnsureLocation(existing) error = %v", err)
	}
	count, err := locations.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("location count = %d, want 1", count)
	}

	// Blank names are ignored.
	if err := svc.EnsureLocation(ctx, "   "); err != nil {
		t.Errorf("EnsureLocation(blank) error = %v, want nil", err)
	}
}
