// Package reconcile assigns coordinates to entries that lack one. The pass
// is an explicit two-phase pipeline — normalize, then allocate — and is a
// pure function of its inputs: it returns both the annotated entries and
// the list of pending write-backs, so persistence can be retried or
// disabled independently of response generation.
package reconcile

import (
	"sort"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/word"
)

// Assignment is one coordinate newly granted to an entry; the set of
// assignments from a pass is the batch to persist.
type Assignment struct {
	ID  string
	Pos ring.Coordinate
}

// Result carries the outcome of one reconciliation pass. Entries preserves
// the input order with final positions filled in. Unplaced counts entries
// left without a coordinate because the ring is full.
type Result struct {
	Entries     []word.Entry
	Assignments []Assignment
	Unplaced    int
}

// Pass reconciles the full entry set against the plan.
//
// Phase one (normalize): any stored coordinate that does not address a real
// slot under the plan is reset to unassigned, so stale claims from older
// capacity tables never block a slot. If two entries claim the same slot,
// the first in store order keeps it and the rest are reset.
//
// Phase two (allocate): unassigned entries are ordered by creation time,
// ties broken by input order, and each claims the lowest free coordinate.
// Running the pass twice on the same input yields the same assignment.
func Pass(plan ring.Plan, entries []word.Entry) Result {
	normalized, occupancy := normalize(plan, entries)

	// Indices of unassigned entries, in first-come-first-served order.
	pending := make([]int, 0)
	for i, e := range normalized {
		if !e.Positioned() {
			pending = append(pending, i)
		}
	}
	sort.SliceStable(pending, func(a, b int) bool {
		return normalized[pending[a]].CreatedAt.Before(normalized[pending[b]].CreatedAt)
	})

	result := Result{Entries: normalized}
	for _, i := range pending {
		c, err := occupancy.ClaimNext(plan)
		if err != nil {
			// Ring full: leave the entry unassigned rather than failing
			// the whole pass.
			result.Unplaced++
			continue
		}
		result.Entries[i] = normalized[i].WithPosition(c)
		result.Assignments = append(result.Assignments, Assignment{ID: normalized[i].ID, Pos: c})
	}
	return result
}

// normalize resets out-of-range and double-booked coordinates to unassigned
// and builds the occupancy map of the surviving claims. It copies the input
// slice; callers keep their view of the store untouched.
func normalize(plan ring.Plan, entries []word.Entry) ([]word.Entry, ring.Occupancy) {
	out := make([]word.Entry, len(entries))
	occupancy := ring.NewOccupancy()
	for i, e := range entries {
		if e.Positioned() && (!plan.Valid(*e.Position) || occupancy.Claimed(*e.Position)) {
			e = e.WithoutPosition()
		}
		if e.Positioned() {
			occupancy.Claim(*e.Position)
		}
		out[i] = e
	}
	return out, occupancy
}
