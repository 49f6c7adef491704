// Package storage holds the error values shared by the persistence backends.
package storage

import "errors"

var (
	// ErrNotFound is returned when a lookup by ID or name yields no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("already exists")
)
