// Package idgen produces identifiers for formulas, bakes, and levain
// builds. UUIDv7 keeps IDs time-sortable so history reads in insertion
// order even after an export/import round trip.
package idgen

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}
