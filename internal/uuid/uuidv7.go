// Package uuid wraps google/uuid for the string primary keys used by every model.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a new UUIDv7 string. Version 7 identifiers are time-ordered,
// which keeps primary-key indexes append-mostly.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy failure: fall back to a random v4 identifier.
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates a UUID string and returns its canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
