package seedwords

import (
	"context"
	"fmt"

	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
)

// verifyLayout checks the listed words against the ring invariants: every
// coordinate addresses a real slot, no slot holds two words, and no word
// sits on layer n+1 while layer n still has a free slot.
func verifyLayout(ctx context.Context, cfg *Config, words []Word) error {
	plan := ring.NewPlan(ring.WithBaseCapacity(cfg.BaseCapacity))
	occupancy := ring.NewOccupancy()

	positioned := 0
	for _, w := range words {
		if w.LayerIndex == nil || w.SlotIndex == nil {
			continue
		}
		positioned++
		c := ring.Coordinate{Layer: *w.LayerIndex, Slot: *w.SlotIndex}
		if !plan.Valid(c) {
			return fmt.Errorf("word %s holds invalid coordinate (%d,%d)", w.ID, c.Layer, c.Slot)
		}
		if occupancy.Claimed(c) {
			return fmt.Errorf("slot (%d,%d) held by more than one word", c.Layer, c.Slot)
		}
		occupancy.Claim(c)
	}

	// Lowest-first: a populated layer implies every lower layer is full.
	byLayer := occupancy.CountByLayer()
	maxUsed := -1
	for layer := range byLayer {
		if layer > maxUsed {
			maxUsed = layer
		}
	}
	for layer := 0; layer < maxUsed; layer++ {
		if byLayer[layer] != plan.Capacity(layer) {
			return fmt.Errorf("layer %d has %d/%d slots filled while layer %d is populated",
				layer, byLayer[layer], plan.Capacity(layer), maxUsed)
		}
	}

	logger.Get().Info(ctx, "layout verified",
		logger.Int("words", len(words)),
		logger.Int("positioned", positioned),
		logger.Int("outermostLayer", maxUsed),
	)
	return nil
}
