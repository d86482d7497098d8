// Package uuid wraps github.com/google/uuid. Record primary keys are UUIDv7 so that
// they sort by creation time; any valid UUID is accepted on input.
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// New returns a new UUIDv7. Panics if UUID generation fails.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// NewRandom returns a new UUIDv7 and any error encountered during generation.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string into a UUID value.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics if the string is not a valid UUID.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// IsUUID reports whether s is a UUID in its canonical hyphenated or bare hex form.
func IsUUID(s string) bool {
	if len(s) != 36 && len(s) != 32 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Compact returns s without hyphens when s is a UUID, otherwise s unchanged.
func Compact(s string) string {
	if !IsUUID(s) {
		return s
	}
	return strings.ReplaceAll(s, "-", "")
}

// Nil is the zero UUID value.
var Nil = uuid.Nil
