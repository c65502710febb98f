package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/config"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
)

// legacyDevice mirrors the flat-JSON device document of earlier releases.
// Records written before ids were introduced have none.
type legacyDevice struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Location     string `json:"location"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Manual       string `json:"manual"`
	HubImported  bool   `json:"hub_imported"`
}

// legacyLocation mirrors one entry of the flat-JSON locations document:
// an object carrying the name and its stored slug. The very first releases
// wrote bare name strings instead, so both forms decode.
type legacyLocation struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (l *legacyLocation) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.Name)
	}
	type plain legacyLocation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = legacyLocation(p)
	return nil
}

// ImportLegacyStore performs the one-time migration from the flat-JSON
// documents of earlier releases. It runs only while the device store is
// empty; missing files are skipped silently. Returns the number of devices
// migrated.
func (s *Service) ImportLegacyStore(ctx context.Context, cfg config.LegacyConfig) (int, error) {
	count, err := s.devices.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting devices: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	legacy, err := readLegacyDevices(cfg.DevicesFile)
	if err != nil {
		return 0, err
	}
	legacyLocations, err := readLegacyLocations(cfg.LocationsFile)
	if err != nil {
		return 0, err
	}
	manualMapping, err := readLegacyManualMapping(cfg.ManualMappingFile)
	if err != nil {
		return 0, err
	}

	if len(legacy) == 0 && len(legacyLocations) == 0 {
		return 0, nil
	}

	for _, ll := range legacyLocations {
		if err := s.importLegacyLocation(ctx, ll); err != nil {
			return 0, err
		}
	}

	migrated := 0
	for _, ld := range legacy {
		d := &device.Device{
			ID:           ld.ID,
			Name:         ld.Name,
			Type:         ld.Type,
			Location:     ld.Location,
			Manufacturer: ld.Manufacturer,
			Model:        ld.Model,
			HubImported:  ld.HubImported,
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}

		manual := strings.TrimSpace(ld.Manual)
		if manual == "" {
			// The old store kept manual assignments in a separate
			// mapping file keyed by device name.
			manual = manualMapping[ld.Name]
		}
		if manual != "" {
			d.Manual = &manual
		}

		if err := device.Validate(d); err != nil {
			s.logger.Warn("skipping invalid legacy device",
				"name", ld.Name, "error", err)
			continue
		}
		if err := s.EnsureLocation(ctx, d.Location); err != nil {
			return migrated, err
		}
		if err := s.devices.Create(ctx, d); err != nil {
			if errors.Is(err, device.ErrDuplicate) {
				continue
			}
			return migrated, fmt.Errorf("migrating device %s: %w", ld.Name, err)
		}
		migrated++
	}

	if migrated > 0 || len(legacyLocations) > 0 {
		s.logger.Info("legacy store migrated",
			"devices", migrated, "locations", len(legacyLocations))
	}
	return migrated, nil
}

// importLegacyLocation inserts a legacy location, keeping its stored slug
// so existing bookmarks and references keep resolving. Records without a
// slug (bare-string form) get one derived from the name.
func (s *Service) importLegacyLocation(ctx context.Context, ll legacyLocation) error {
	name := strings.TrimSpace(ll.Name)
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

	slug := strings.TrimSpace(ll.Slug)
	if slug == "" {
		slug = location.Slugify(name)
	}
	loc := &location.Location{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug,
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		if errors.Is(err, location.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("creating location %s: %w", name, err)
	}
	return nil
}

func readLegacyDevices(path string) ([]legacyDevice, error) {
	data, err := readOptionalFile(path)
	if err != nil || data == nil {
		return nil, err
	}
	var devices []legacyDevice
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("parsing legacy devices file %s: %w", path, err)
	}
	return devices, nil
}

func readLegacyLocations(path string) ([]legacyLocation, error) {
	data, err := readOptionalFile(path)
	if err != nil || data == nil {
		return nil, err
	}
	var locations []legacyLocation
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("parsing legacy locations file %s: %w", path, err)
	}
	return locations, nil
}

func readLegacyManualMapping(path string) (map[string]string, error) {
	data, err := readOptionalFile(path)
	if err != nil || data == nil {
		return nil, err
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing legacy manual mapping %s: %w", path, err)
	}
	return mapping, nil
}

// readOptionalFile returns nil data without error when the file is absent.
func readOptionalFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
