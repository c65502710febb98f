package device

import "time"

// Known device types. Imported devices are mapped onto this set; manually
// created devices may use any non-empty type string.
const (
	TypeLighting     = "Lighting"
	TypeSwitch       = "Switch"
	TypeSensor       = "Sensor"
	TypeBinarySensor = "Binary Sensor"
	TypeClimate      = "Climate"
	TypeMediaPlayer  = "Media Player"
	TypeCamera       = "Camera"
	TypeVacuum       = "Vacuum"
	TypeOther        = "Other"
)

// Unknown is the placeholder for fields with no known value.
const Unknown = "Unknown"

// Device is a single catalog entry.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Location     string    `json:"location"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Manual       *string   `json:"manual,omitempty"`
	HubImported  bool      `json:"hub_imported"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasManual reports whether the device references a manual file.
func (d *Device) HasManual() bool {
	return d.Manual != nil && *d.Manual != ""
}
