// Package location manages the rooms and areas a device can be assigned to.
//
// Locations are identified by name (unique case-insensitively) and carry a
// URL-safe slug derived deterministically from the name. The store is purely
// additive during hub imports: discovered areas are merged in, never removed.
//
// A location may only be deleted while no device references it; the
// repository enforces this and returns ErrLocationInUse otherwise.
package location
