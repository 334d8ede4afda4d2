package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/reconcile"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
)

// MemStore is an in-process Store used for tests and single-node
// deployments without Postgres. It enforces the same slot uniqueness
// guarantee as the SQL schema.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]word.Entry
	order   map[string]int // insertion sequence, the List tie-breaker
	seq     int
	now     func() time.Time
}

// MemOption configures a MemStore.
type MemOption func(*MemStore)

// WithClock overrides the creation-time source. Intended for tests.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		entries: make(map[string]word.Entry),
		order:   make(map[string]int),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all entries in the contract order: positioned rows by
// (layer, slot) ascending after unpositioned ones, createdAt as the final
// tie-breaker, insertion sequence keeping the sort stable.
func (s *MemStore) List(_ context.Context) ([]word.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]word.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Positioned() != b.Positioned() {
			return !a.Positioned() // nulls first
		}
		if a.Positioned() {
			if a.Position.Layer != b.Position.Layer {
				return a.Position.Layer < b.Position.Layer
			}
			if a.Position.Slot != b.Position.Slot {
				return a.Position.Slot < b.Position.Slot
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return s.order[a.ID] < s.order[b.ID]
	})
	return out, nil
}

// Get returns the entry with the given id.
func (s *MemStore) Get(_ context.Context, id string) (word.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return word.Entry{}, ErrNotFound
	}
	return e, nil
}

// Insert stores a new entry, assigning id and creation time.
func (s *MemStore) Insert(_ context.Context, e word.Entry) (word.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Positioned() && s.slotHeldLocked(*e.Position, "") {
		return word.Entry{}, ErrSlotTaken
	}
	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.entries[e.ID] = e
	s.seq++
	s.order[e.ID] = s.seq
	return e, nil
}

// UpdatePositions applies reconciled coordinates; unknown ids are skipped.
func (s *MemStore) UpdatePositions(_ context.Context, assignments []reconcile.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range assignments {
		e, ok := s.entries[a.ID]
		if !ok {
			continue
		}
		if s.slotHeldLocked(a.Pos, a.ID) {
			return ErrSlotTaken
		}
		s.entries[a.ID] = e.WithPosition(a.Pos)
	}
	return nil
}

// Delete removes the entry with the given id.
func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	delete(s.order, id)
	return nil
}

// Count returns the number of live entries.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// slotHeldLocked reports whether any live row other than excludeID holds
// the coordinate. Callers must hold the lock.
func (s *MemStore) slotHeldLocked(c ring.Coordinate, excludeID string) bool {
	for id, e := range s.entries {
		if id == excludeID {
			continue
		}
		if e.Positioned() && *e.Position == c {
			return true
		}
	}
	return false
}
