package device

import (
	"fmt"
	"strings"
)

const (
	maxNameLength  = 200
	maxFieldLength = 100
)

// Validate checks the device for storable values and normalizes blank
// optional fields to their placeholders.
func Validate(d *Device) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidDevice)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDevice, maxNameLength)
	}

	for field, value := range map[string]*string{
		"type":         &d.Type,
		"location":     &d.Location,
		"manufacturer": &d.Manufacturer,
		"model":        &d.Model,
	} {
		*value = strings.TrimSpace(*value)
		if len(*value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidDevice, field, maxFieldLength)
		}
	}

	if d.Type == "" {
		d.Type = TypeOther
	}
	if d.Location == "" {
		d.Location = Unknown
	}
	if d.Manufacturer == "" {
		d.Manufacturer = Unknown
	}
	if d.Model == "" {
		d.Model = Unknown
	}
	return nil
}
