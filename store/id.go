package store

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string. Lexical order of the ids
// generated by one process matches their creation order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
