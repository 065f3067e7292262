package geom

import "math"

// Unbounded is the effective maximum of a constraint without an upper limit.
const Unbounded = float32(math.MaxFloat32)

// Constraint bounds one axis of a node's size.
//
// Max <= 0 means unbounded, so the zero value is "any size, sized by content".
// Preferred is only honoured when HasPreferred is set; otherwise the node's
// intrinsic content size is used. Flex is the share of leftover space the node
// claims relative to its siblings.
type Constraint struct {
	Min          float32
	Max          float32
	Preferred    float32
	HasPreferred bool
	Flex         float32
}

// Pref returns a constraint preferring v.
func Pref(v float32) Constraint { return Constraint{Preferred: v, HasPreferred: true} }

// Fixed pins the extent to exactly v.
func Fixed(v float32) Constraint { return Constraint{Min: v, Max: v, Preferred: v, HasPreferred: true} }

// Flex returns an unbounded constraint with grow weight w.
func Flex(w float32) Constraint { return Constraint{Flex: w} }

// Between returns a content-sized constraint bounded by [min, max].
func Between(min, max float32) Constraint { return Constraint{Min: min, Max: max} }

func (c Constraint) WithMin(v float32) Constraint  { c.Min = v; return c }
func (c Constraint) WithMax(v float32) Constraint  { c.Max = v; return c }
func (c Constraint) WithFlex(w float32) Constraint { c.Flex = w; return c }
func (c Constraint) WithPref(v float32) Constraint {
	c.Preferred = v
	c.HasPreferred = true
	return c
}

// Normalize clamps the constraint into a consistent state:
// 0 <= Min <= Preferred <= Max and Flex >= 0. Max below Min is raised to Min.
func (c Constraint) Normalize() Constraint {
	if c.Min < 0 || isNaN(c.Min) {
		c.Min = 0
	}
	if c.Max <= 0 || isNaN(c.Max) {
		c.Max = Unbounded
	}
	if c.Max < c.Min {
		c.Max = c.Min
	}
	if c.HasPreferred {
		c.Preferred = c.Clamp(c.Preferred)
	}
	if c.Flex < 0 || isNaN(c.Flex) {
		c.Flex = 0
	}
	return c
}

// Clamp limits v to [Min, Max] (Max <= 0 treated as unbounded).
func (c Constraint) Clamp(v float32) float32 {
	max := c.Max
	if max <= 0 {
		max = Unbounded
	}
	if isNaN(v) {
		v = 0
	}
	if v > max {
		v = max
	}
	if v < c.Min {
		v = c.Min
	}
	return v
}

// Resolve returns the preferred extent if set, otherwise content, clamped.
func (c Constraint) Resolve(content float32) float32 {
	if c.HasPreferred {
		return c.Clamp(c.Preferred)
	}
	return c.Clamp(content)
}

// Bounded reports whether the constraint carries an explicit maximum.
func (c Constraint) Bounded() bool { return c.Max > 0 && c.Max < Unbounded }

func isNaN(v float32) bool { return v != v }
