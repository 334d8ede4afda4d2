// Package ring models the concentric ring structure: layer capacities,
// coordinate validity, and slot occupancy. Everything here is pure and
// store-agnostic so allocation can be tested without live I/O.
package ring

// maxCapacityShift clamps the doubling formula so capacities never
// overflow int on deep layers.
const maxCapacityShift = 30

// Coordinate addresses one slot inside one layer.
type Coordinate struct {
	Layer int
	Slot  int
}

// Plan defines how many slots each layer holds. The baseline rule doubles
// the base capacity per layer; individual layers can be pinned to a fixed
// capacity, and a maximum layer index can close the structure entirely.
// A Plan is a value type and safe for concurrent reads.
type Plan struct {
	base      int
	maxLayer  int // negative means unbounded
	overrides map[int]int
}

// PlanOption configures a Plan.
type PlanOption func(*Plan)

// WithBaseCapacity sets the capacity of layer 0. Layer i holds base*2^i
// slots unless overridden.
func WithBaseCapacity(n int) PlanOption {
	return func(p *Plan) {
		if n > 0 {
			p.base = n
		}
	}
}

// WithMaxLayer bounds the structure: layers beyond index i have capacity 0
// and claiming fails once every layer up to i is full. A negative index
// keeps the plan unbounded.
func WithMaxLayer(i int) PlanOption {
	return func(p *Plan) {
		p.maxLayer = i
	}
}

// WithOverride pins a single layer to a fixed capacity regardless of the
// doubling formula. A zero capacity makes the layer unusable.
func WithOverride(layer, capacity int) PlanOption {
	return func(p *Plan) {
		if layer < 0 || capacity < 0 {
			return
		}
		if p.overrides == nil {
			p.overrides = make(map[int]int)
		}
		p.overrides[layer] = capacity
	}
}

// WithOverrides pins several layers at once.
func WithOverrides(overrides map[int]int) PlanOption {
	return func(p *Plan) {
		for layer, capacity := range overrides {
			WithOverride(layer, capacity)(p)
		}
	}
}

// NewPlan builds a Plan with the default rule capacity(i) = 4 * 2^i and no
// maximum layer.
func NewPlan(opts ...PlanOption) Plan {
	p := Plan{
		base:     4,
		maxLayer: -1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Bounded reports whether the plan has a maximum layer index.
func (p Plan) Bounded() bool { return p.maxLayer >= 0 }

// MaxLayer returns the configured maximum layer index, or -1 when unbounded.
func (p Plan) MaxLayer() int {
	if !p.Bounded() {
		return -1
	}
	return p.maxLayer
}

// Capacity returns the number of slots in the given layer. Out-of-range
// layers have capacity 0.
func (p Plan) Capacity(layer int) int {
	if layer < 0 {
		return 0
	}
	if p.Bounded() && layer > p.maxLayer {
		return 0
	}
	if c, ok := p.overrides[layer]; ok {
		return c
	}
	shift := layer
	if shift > maxCapacityShift {
		shift = maxCapacityShift
	}
	return p.base << shift
}

// Valid reports whether a stored coordinate addresses a real slot under
// this plan. Coordinates that fail this check are treated as unassigned.
func (p Plan) Valid(c Coordinate) bool {
	capacity := p.Capacity(c.Layer)
	return capacity > 0 && c.Slot >= 0 && c.Slot < capacity
}

// TotalCapacity returns the total number of slots in a bounded plan, or -1
// for an unbounded one.
func (p Plan) TotalCapacity() int {
	if !p.Bounded() {
		return -1
	}
	total := 0
	for layer := 0; layer <= p.maxLayer; layer++ {
		total += p.Capacity(layer)
	}
	return total
}
