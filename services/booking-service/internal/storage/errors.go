package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrOverlap is returned when a write would make two non-cancelled bookings of the
	// same room overlap. In Postgres it comes from the bookings_no_overlap exclusion
	// constraint.
	ErrOverlap = errors.New("booking overlaps an existing booking")
)
