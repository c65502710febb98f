// Package importer merges discovered hub data into the local catalog.
//
// All merge operations are additive and idempotent: discovered areas and
// devices that already exist locally are left untouched, misses are
// appended, and an empty discovery result changes nothing. Local edits,
// manual assignments, and locally created entries always survive a
// re-import.
package importer
