// Package geometry derives presentation placement (radius and angle) from
// ring coordinates. Placement is computed, never stored; it carries no
// correctness weight.
package geometry

import "github.com/Qwealzy/roots-of-sentient/internal/domain/ring"

const fullCircle = 360.0

// Placement is the polar position of one word around the central anchor.
type Placement struct {
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// Mapper converts coordinates into placements. Rings are spaced linearly
// outward; slots within a ring are spaced evenly, except that layer 0 may
// use a hand-picked angle set when its capacity matches that set's size.
type Mapper struct {
	baseRadius      float64
	radiusStep      float64
	halfStepOffset  bool
	layerZeroAngles []float64
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithBaseRadius sets the radius of layer 0.
func WithBaseRadius(r float64) Option {
	return func(m *Mapper) {
		if r > 0 {
			m.baseRadius = r
		}
	}
}

// WithRadiusStep sets the distance between consecutive rings.
func WithRadiusStep(step float64) Option {
	return func(m *Mapper) {
		if step > 0 {
			m.radiusStep = step
		}
	}
}

// WithHalfStepOffset rotates odd layers by half a slot so that slots do not
// line up radially across rings.
func WithHalfStepOffset(enabled bool) Option {
	return func(m *Mapper) {
		m.halfStepOffset = enabled
	}
}

// WithLayerZeroAngles sets a fixed angle per layer-0 slot. The set is used
// only when its length equals the capacity of layer 0.
func WithLayerZeroAngles(angles []float64) Option {
	return func(m *Mapper) {
		m.layerZeroAngles = append([]float64(nil), angles...)
	}
}

// NewMapper builds a Mapper with one entry per quadrant on layer 0 and a
// 60 unit ring spacing starting at radius 90.
func NewMapper(opts ...Option) Mapper {
	m := Mapper{
		baseRadius:      90,
		radiusStep:      60,
		layerZeroAngles: []float64{45, 135, 225, 315},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Place returns the placement for a coordinate under the given plan.
func (m Mapper) Place(p ring.Plan, c ring.Coordinate) Placement {
	radius := m.baseRadius + float64(c.Layer)*m.radiusStep

	capacity := p.Capacity(c.Layer)
	if capacity <= 0 {
		return Placement{Radius: radius}
	}

	if c.Layer == 0 && len(m.layerZeroAngles) == capacity {
		return Placement{Radius: radius, Angle: m.layerZeroAngles[c.Slot]}
	}

	step := fullCircle / float64(capacity)
	angle := step * float64(c.Slot)
	if m.halfStepOffset && c.Layer%2 == 1 {
		angle += step / 2
	}
	for angle >= fullCircle {
		angle -= fullCircle
	}
	return Placement{Radius: radius, Angle: angle}
}
