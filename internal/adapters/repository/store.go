// Package repository defines the record store contract for word entries
// and its memory and Postgres implementations.
package repository

import (
	"context"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
)

// Store provides read/write access to word entries. The store is the sole
// source of truth and the sole synchronization point; occupancy is always
// recomputed from its live rows.
type Store interface {
	// List returns all entries ordered by (layer nulls-first,
	// slot nulls-first, createdAt) ascending.
	List(ctx context.Context) ([]word.Entry, error)

	// Get returns the entry with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (word.Entry, error)

	// Insert persists a new entry, assigning its id and creation time.
	// Returns ErrSlotTaken when the entry's coordinate is already held by
	// a live row.
	Insert(ctx context.Context, e word.Entry) (word.Entry, error)

	// UpdatePositions applies reconciled coordinates as a batch upsert
	// keyed by entry id. Ids that no longer exist are skipped.
	UpdatePositions(ctx context.Context, assignments []reconcile.Assignment) error

	// Delete removes the entry with the given id, or returns ErrNotFound.
	// Its slot becomes implicitly free for the next allocation pass.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live entries, 0 on failure.
	Count(ctx context.Context) int
}
