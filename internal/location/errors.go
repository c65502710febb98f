package location

import "errors"

var (
	// ErrNotFound is returned when a location does not exist.
	ErrNotFound = errors.New("location not found")

	// ErrDuplicate is returned when a location with the same name
	// (case-insensitive) or slug already exists.
	ErrDuplicate = errors.New("location already exists")

	// ErrLocationInUse is returned when trying to delete a location that
	// still has devices assigned to it.
	ErrLocationInUse = errors.New("location has devices assigned")

	// ErrInvalidName is returned when a location name is empty or too long.
	ErrInvalidName = errors.New("invalid location name")
)
