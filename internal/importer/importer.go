package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/hub"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
)

// Discoverer is the slice of the hub client the importer needs.
type Discoverer interface {
	ListDevices(ctx context.Context) []hub.NormalizedDevice
	ListAreas(ctx context.Context) []hub.Area
}

// Service merges hub discoveries into the device and location stores.
type Service struct {
	hub       Discoverer
	devices   device.Repository
	locations location.Repository
	logger    *logging.Logger
}

// New creates an importer service. hub may be nil when discovery is
// disabled; import operations then report zero changes.
func New(hub Discoverer, devices device.Repository, locations location.Repository, logger *logging.Logger) *Service {
	return &Service{
		hub:       hub,
		devices:   devices,
		locations: locations,
		logger:    logger.With("component", "importer"),
	}
}

// ImportAreas merges discovered areas into the location store and returns
// the number added. Existing locations are matched case-insensitively and
// never modified; an empty discovery skips the merge entirely.
func (s *Service) ImportAreas(ctx context.Context) (int, error) {
	if s.hub == nil {
		return 0, nil
	}

	areas := s.hub.ListAreas(ctx)
	if len(areas) == 0 {
		s.logger.Info("no areas discovered, skipping merge")
		return 0, nil
	}

	existing, err := s.locations.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing locations: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, loc := range existing {
		known[strings.ToLower(loc.Name)] = struct{}{}
	}

	added := 0
	for _, area := range areas {
		name := strings.TrimSpace(area.Name)
		if name == "" {
			continue
		}
		if _, ok := known[strings.ToLower(name)]; ok {
			continue
		}
		if err := s.createLocation(ctx, name); err != nil {
			return added, err
		}
		known[strings.ToLower(name)] = struct{}{}
		added++
	}

	s.logger.Info("area import complete", "discovered", len(areas), "added", added)
	return added, nil
}

// ImportDevices merges discovered devices into the catalog and returns the
// number imported. Devices whose id already exists are untouched, so local
// edits and manual assignments survive re-imports.
func (s *Service) ImportDevices(ctx context.Context) (int, error) {
	if s.hub == nil {
		return 0, nil
	}

	discovered := s.hub.ListDevices(ctx)
	if len(discovered) == 0 {
		s.logger.Info("no devices discovered, skipping merge")
		return 0, nil
	}

	existing, err := s.devices.ExistingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing device ids: %w", err)
	}

	imported := 0
	for _, nd := range discovered {
		if _, ok := existing[nd.ID]; ok {
			continue
		}

		if err := s.EnsureLocation(ctx, nd.Location); err != nil {
			return imported, err
		}

		d := &device.Device{
			ID:           nd.ID,
			Name:         nd.Name,
			Type:         nd.Type,
			Location:     nd.Location,
			Manufacturer: nd.Manufacturer,
			Model:        nd.Model,
			HubImported:  true,
		}
		if err := device.Validate(d); err != nil {
			s.logger.Warn("skipping invalid discovered device",
				"device_id", nd.ID, "error", err)
			continue
		}
		if err := s.devices.Create(ctx, d); err != nil {
			if errors.Is(err, device.ErrDuplicate) {
				continue
			}
			return imported, fmt.Errorf("creating device %s: %w", d.ID, err)
		}
		imported++
	}

	s.logger.Info("device import complete",
		"discovered", len(discovered), "imported", imported)
	return imported, nil
}

// SeedLocations populates an empty location store from the distinct
// location names already referenced by devices. It does nothing when any
// location exists.
func (s *Service) SeedLocations(ctx context.Context) error {
	count, err := s.locations.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	names, err := s.devices.DistinctLocations(ctx)
	if err != nil {
		return fmt.Errorf("listing device locations: %w", err)
	}

	seeded := 0
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			continue
		}
		seen[strings.ToLower(name)] = struct{}{}
		if err := s.createLocation(ctx, name); err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		s.logger.Info("seeded locations from devices", "count", seeded)
	}
	return nil
}

// EnsureLocation inserts a location if no case-insensitive match exists.
// Used by device create/update paths and during imports so assigning a
// device to a new room also creates the room.
func (s *Service) EnsureLocation(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	_, err := s.locations.GetByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, location.ErrNotFound) {
		return fmt.Errorf("looking up location %s: %w", name, err)
	}
	return s.createLocation(ctx, name)
}

func (s *Service) createLocation(ctx context.Context, name string) error {
	loc := &location.Location{
		ID:   uuid.NewString(),
		Name: name,
		Slug: location.Slugify(name),
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		// Lost race with a concurrent insert of the same name.
		if errors.Is(err, location.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("creating location %s: %w", name, err)
	}
	return nil
}
