package hub

import "context"

// Registry endpoint paths vary between hub versions; each kind carries a
// ranked list of variants tried in order until one parses.
var (
	deviceRegistryPaths = []string{
		"/config/device_registry",
		"/config/device_registry/list",
	}
	entityRegistryPaths = []string{
		"/config/entity_registry",
		"/config/entity_registry/list",
	}
	areaRegistryPaths = []string{
		"/config/area_registry",
		"/config/area_registry/list",
	}
)

// fetchDeviceRegistry returns the device registry, or nil if no endpoint
// variant answered with a parseable array.
func (c *Client) fetchDeviceRegistry(ctx context.Context) []deviceEntry {
	return fetchRegistry[deviceEntry](ctx, c, "device_registry", deviceRegistryPaths)
}

func (c *Client) fetchEntityRegistry(ctx context.Context) []entityEntry {
	return fetchRegistry[entityEntry](ctx, c, "entity_registry", entityRegistryPaths)
}

func (c *Client) fetchAreaRegistry(ctx context.Context) []Area {
	return fetchRegistry[Area](ctx, c, "area_registry", areaRegistryPaths)
}

// fetchRegistry tries each path variant in order and returns the first
// successfully parsed array. All failures are logged; none propagate.
func fetchRegistry[T any](ctx context.Context, c *Client, kind string, paths []string) []T {
	for _, path := range paths {
		var entries []T
		if err := c.getJSON(ctx, path, &entries); err != nil {
			c.logger.Debug("registry endpoint variant failed",
				"registry", kind, "path", path, "error", err)
			continue
		}
		c.logger.Debug("registry fetched",
			"registry", kind, "path", path, "entries", len(entries))
		return entries
	}
	c.logger.Warn("registry unavailable on all endpoint variants", "registry", kind)
	return nil
}
