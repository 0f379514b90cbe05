package service

import "github.com/google/uuid"

// newID returns a time-ordered id so rows created within the same second
// still sort by creation.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
