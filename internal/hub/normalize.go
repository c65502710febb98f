package hub

import (
	"strings"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
)

// monitoredDomains are the entity domains worth cataloguing. Everything
// else (sensors, scripts, automations, helpers) is noise for a household
// device list.
var monitoredDomains = map[string]struct{}{
	"light":        {},
	"switch":       {},
	"climate":      {},
	"media_player": {},
	"camera":       {},
	"vacuum":       {},
	"cover":        {},
	"fan":          {},
	"humidifier":   {},
	"water_heater": {},
}

// domainTypes maps an entity domain to a catalog device type.
var domainTypes = map[string]string{
	"light":         device.TypeLighting,
	"switch":        device.TypeSwitch,
	"sensor":        device.TypeSensor,
	"binary_sensor": device.TypeBinarySensor,
	"climate":       device.TypeClimate,
	"media_player":  device.TypeMediaPlayer,
	"camera":        device.TypeCamera,
	"vacuum":        device.TypeVacuum,
}

// defaultRooms is the last-resort area list when the hub yields nothing.
var defaultRooms = []string{
	"Living Room", "Kitchen", "Bedroom", "Bathroom",
	"Office", "Hallway", "Basement", "Garage",
}

// splitEntityID splits "light.ceiling" into domain and object id.
func splitEntityID(entityID string) (domain, objectID string) {
	domain, objectID, ok := strings.Cut(entityID, ".")
	if !ok {
		return "", entityID
	}
	return domain, objectID
}

// typeForDomain maps an entity domain to a device type, defaulting to Other.
func typeForDomain(domain string) string {
	if t, ok := domainTypes[domain]; ok {
		return t
	}
	return device.TypeOther
}

// friendlyName extracts the display name from state attributes, falling
// back to the entity object id with underscores turned into spaces.
func friendlyName(s UpstreamState) string {
	if v, ok := s.Attributes["friendly_name"].(string); ok {
		if name := strings.TrimSpace(v); name != "" {
			return name
		}
	}
	_, objectID := splitEntityID(s.EntityID)
	return strings.ReplaceAll(objectID, "_", " ")
}

// locationFromName guesses a room from a display name like
// "Kitchen Ceiling Light": the first word, but only when the name actually
// has more than one word, the word is longer than the configured minimum,
// and it is not a stop word (articles make terrible room names).
func (c *Client) locationFromName(name string) string {
	name = strings.TrimSpace(name)
	first, rest, ok := strings.Cut(name, " ")
	if !ok || strings.TrimSpace(rest) == "" {
		return ""
	}
	if len(first) <= c.cfg.minLocationLength {
		return ""
	}
	if _, stop := c.cfg.stopWords[strings.ToLower(first)]; stop {
		return ""
	}
	return first
}

// stringAttr returns a trimmed string attribute, or "" when absent.
func stringAttr(s UpstreamState, key string) string {
	if v, ok := s.Attributes[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
