package repository

import "errors"

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound signals an unknown entry id.
	ErrNotFound = errors.New("entry not found")

	// ErrSlotTaken signals that a live row already holds the coordinate
	// being written. Callers should rebuild occupancy and re-claim rather
	// than treat this as fatal.
	ErrSlotTaken = errors.New("slot already taken")
)
