package device

import "errors"

var (
	// ErrNotFound indicates the requested device does not exist.
	ErrNotFound = errors.New("device not found")

	// ErrDuplicate indicates a device with the same ID already exists.
	ErrDuplicate = errors.New("device already exists")

	// ErrInvalidDevice indicates the device failed validation.
	ErrInvalidDevice = errors.New("invalid device")
)
