package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when a versioned update lost the race
	// against a concurrent writer. Callers reload and retry.
	ErrVersionConflict = errors.New("version conflict")
)
