// Package word defines the contribution model and its input rules: length
// bounds, required fields, and locale-aware duplicate detection of terms.
package word

import (
	"time"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
)

// Entry is one visitor contribution. Position is nil until the allocator
// assigns a coordinate; an entry is never half-assigned.
type Entry struct {
	ID          string
	Term        string
	DisplayName string
	AvatarRef   string // blob key, empty when the visitor uploaded no avatar
	OwnerToken  string
	CreatedAt   time.Time
	Position    *ring.Coordinate
}

// Positioned reports whether the entry holds a coordinate.
func (e Entry) Positioned() bool { return e.Position != nil }

// WithPosition returns a copy of the entry holding the given coordinate.
func (e Entry) WithPosition(c ring.Coordinate) Entry {
	pos := c
	e.Position = &pos
	return e
}

// WithoutPosition returns a copy of the entry with its coordinate cleared.
func (e Entry) WithoutPosition() Entry {
	e.Position = nil
	return e
}
