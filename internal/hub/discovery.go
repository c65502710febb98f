package hub

import (
	"context"
	"sort"
	"strings"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
)

// ListDevices discovers catalog candidates from the hub.
//
// It fetches /states, keeps entities in the monitored domains, and enriches
// each with registry data where available: the true device id, the
// user-assigned name, manufacturer, model, and the area resolved through
// entity → device → area. Without registries it falls back to state
// attributes and the name heuristic. Duplicate ids keep their first
// occurrence.
//
// All failures degrade to an empty slice; this method never returns an
// error to its caller.
func (c *Client) ListDevices(ctx context.Context) []NormalizedDevice {
	var states []UpstreamState
	if err := c.getJSON(ctx, "/states", &states); err != nil {
		c.logger.Warn("state fetch failed, discovery empty", "error", err)
		return []NormalizedDevice{}
	}

	devicesByID := make(map[string]deviceEntry)
	for _, d := range c.fetchDeviceRegistry(ctx) {
		devicesByID[d.ID] = d
	}
	entitiesByID := make(map[string]entityEntry)
	for _, e := range c.fetchEntityRegistry(ctx) {
		entitiesByID[e.EntityID] = e
	}
	areaNames := make(map[string]string)
	for _, a := range c.fetchAreaRegistry(ctx) {
		areaNames[a.ID] = a.Name
	}

	seen := make(map[string]struct{})
	discovered := []NormalizedDevice{}

	for _, s := range states {
		domain, _ := splitEntityID(s.EntityID)
		if _, ok := monitoredDomains[domain]; !ok {
			continue
		}

		nd := c.normalize(s, domain, devicesByID, entitiesByID, areaNames)
		if _, dup := seen[nd.ID]; dup {
			continue
		}
		seen[nd.ID] = struct{}{}
		discovered = append(discovered, nd)
	}

	c.logger.Info("device discovery complete",
		"states", len(states), "devices", len(discovered))
	return discovered
}

// normalize reduces one entity state to catalog shape using whatever
// registry data resolved.
func (c *Client) normalize(
	s UpstreamState,
	domain string,
	devicesByID map[string]deviceEntry,
	entitiesByID map[string]entityEntry,
	areaNames map[string]string,
) NormalizedDevice {
	nd := NormalizedDevice{
		ID:           s.EntityID,
		Name:         friendlyName(s),
		Type:         typeForDomain(domain),
		Location:     device.Unknown,
		Manufacturer: device.Unknown,
		Model:        device.Unknown,
	}

	entity, hasEntity := entitiesByID[s.EntityID]
	var entry deviceEntry
	var hasDevice bool
	if hasEntity && entity.DeviceID != "" {
		entry, hasDevice = devicesByID[entity.DeviceID]
	}

	if hasDevice {
		nd.ID = entry.ID
		if name := entry.displayName(); name != "" {
			nd.Name = name
		}
		if entry.Manufacturer != "" {
			nd.Manufacturer = entry.Manufacturer
		}
		if entry.Model != "" {
			nd.Model = entry.Model
		}
	}
	if m := stringAttr(s, "manufacturer"); nd.Manufacturer == device.Unknown && m != "" {
		nd.Manufacturer = m
	}
	if m := stringAttr(s, "model"); nd.Model == device.Unknown && m != "" {
		nd.Model = m
	}

	// Area resolution order: the device's area, then the entity's own
	// area, then an area_id in the state attributes, then the name
	// heuristic.
	areaID := ""
	if hasDevice && entry.AreaID != "" {
		areaID = entry.AreaID
	} else if hasEntity && entity.AreaID != "" {
		areaID = entity.AreaID
	} else if a := stringAttr(s, "area_id"); a != "" {
		areaID = a
	}
	if name, ok := areaNames[areaID]; ok && name != "" {
		nd.Location = name
	} else if guess := c.locationFromName(nd.Name); guess != "" {
		nd.Location = guess
	}

	return nd
}

// ListAreas discovers room names from the hub.
//
// The area registry is authoritative when reachable. Without it, names are
// derived from monitored entity display names via the heuristic, deduped
// case-insensitively; raw area ids found in state attributes are ignored
// here, since only the registry can resolve them to display names. If even
// that yields nothing, a fixed default room list is returned so a fresh
// install still has something to file devices under. This method never
// returns an error to its caller.
func (c *Client) ListAreas(ctx context.Context) []Area {
	if areas := c.fetchAreaRegistry(ctx); len(areas) > 0 {
		sort.Slice(areas, func(i, j int) bool {
			return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
		})
		return areas
	}

	var states []UpstreamState
	if err := c.getJSON(ctx, "/states", &states); err != nil {
		c.logger.Warn("state fetch failed, using default rooms", "error", err)
		return defaultAreas()
	}

	seen := make(map[string]struct{})
	var areas []Area
	for _, s := range states {
		domain, _ := splitEntityID(s.EntityID)
		if _, ok := monitoredDomains[domain]; !ok {
			continue
		}
		guess := c.locationFromName(friendlyName(s))
		if guess == "" {
			continue
		}
		key := strings.ToLower(guess)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		areas = append(areas, Area{Name: guess})
	}

	if len(areas) == 0 {
		return defaultAreas()
	}
	sort.Slice(areas, func(i, j int) bool {
		return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
	})
	return areas
}

func defaultAreas() []Area {
	areas := make([]Area, len(defaultRooms))
	for i, name := range defaultRooms {
		areas[i] = Area{Name: name}
	}
	return areas
}
