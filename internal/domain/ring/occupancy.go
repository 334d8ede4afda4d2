package ring

// Occupancy records which coordinates are currently claimed. It is rebuilt
// from the live entry set on every allocation decision and never persisted;
// the persisted truth lives on the entries themselves.
type Occupancy map[int]map[int]struct{}

// NewOccupancy builds an occupancy map from already validity-checked
// coordinates.
func NewOccupancy(coords ...Coordinate) Occupancy {
	o := make(Occupancy)
	for _, c := range coords {
		o.Claim(c)
	}
	return o
}

// Claimed reports whether the coordinate is taken.
func (o Occupancy) Claimed(c Coordinate) bool {
	slots, ok := o[c.Layer]
	if !ok {
		return false
	}
	_, taken := slots[c.Slot]
	return taken
}

// Claim marks the coordinate as taken.
func (o Occupancy) Claim(c Coordinate) {
	slots, ok := o[c.Layer]
	if !ok {
		slots = make(map[int]struct{})
		o[c.Layer] = slots
	}
	slots[c.Slot] = struct{}{}
}

// ClaimNext finds the lowest free coordinate under the plan, scanning layers
// from 0 outward and slots in ascending order, and claims it before
// returning so that subsequent calls within the same pass cannot collide.
// It returns ErrRingFull when a bounded plan has no free slot left; an
// unbounded plan always yields a coordinate.
func (o Occupancy) ClaimNext(p Plan) (Coordinate, error) {
	for layer := 0; ; layer++ {
		if p.Bounded() && layer > p.MaxLayer() {
			return Coordinate{}, ErrRingFull
		}
		capacity := p.Capacity(layer)
		if capacity == 0 {
			continue
		}
		slots := o[layer]
		if len(slots) >= capacity {
			continue
		}
		for slot := 0; slot < capacity; slot++ {
			if _, taken := slots[slot]; taken {
				continue
			}
			c := Coordinate{Layer: layer, Slot: slot}
			o.Claim(c)
			return c, nil
		}
	}
}

// Count returns the total number of claimed slots.
func (o Occupancy) Count() int {
	total := 0
	for _, slots := range o {
		total += len(slots)
	}
	return total
}

// CountByLayer returns the number of claimed slots per layer.
func (o Occupancy) CountByLayer() map[int]int {
	out := make(map[int]int, len(o))
	for layer, slots := range o {
		if len(slots) > 0 {
			out[layer] = len(slots)
		}
	}
	return out
}
