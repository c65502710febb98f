package hub

// UpstreamState is one entity state as returned by the hub's /states
// endpoint. Only the fields the catalog cares about are decoded.
type UpstreamState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// NormalizedDevice is a discovered device reduced to catalog shape.
// Instances are produced fresh on each discovery and never mutated.
type NormalizedDevice struct {
	ID           string
	Name         string
	Type         string
	Location     string
	Manufacturer string
	Model        string
}

// Area is a named room or zone known to the hub.
type Area struct {
	ID   string `json:"area_id"`
	Name string `json:"name"`
}

// deviceEntry is a device registry record. The hub reports a user-assigned
// name separately from the integration-assigned one.
type deviceEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameByUser   string `json:"name_by_user"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	AreaID       string `json:"area_id"`
}

// displayName prefers the user-assigned name over the integration one.
func (d deviceEntry) displayName() string {
	if d.NameByUser != "" {
		return d.NameByUser
	}
	return d.Name
}

// entityEntry is an entity registry record linking an entity to its device
// and, optionally, directly to an area.
type entityEntry struct {
	EntityID string `json:"entity_id"`
	DeviceID string `json:"device_id"`
	AreaID   string `json:"area_id"`
}
