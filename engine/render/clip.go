package render

import (
	"fmt"

	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

// ClipStack tracks nested clip rectangles. Each pushed rectangle is
// intersected with the one below it, so Top is always the effective clip.
type ClipStack struct {
	stack []geom.Rect
}

func (c *ClipStack) Push(r geom.Rect) geom.Rect {
	if top, ok := c.Top(); ok {
		r = top.Intersect(r)
	}
	c.stack = append(c.stack, r)
	return r
}

func (c *ClipStack) Pop() error {
	if len(c.stack) == 0 {
		return fmt.Errorf("%w: PopClip with empty clip stack", draw.ErrUnbalancedClip)
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

func (c *ClipStack) Top() (geom.Rect, bool) {
	if len(c.stack) == 0 {
		return geom.Rect{}, false
	}
	return c.stack[len(c.stack)-1], true
}

func (c *ClipStack) Depth() int { return len(c.stack) }
func (c *ClipStack) Reset()     { c.stack = c.stack[:0] }
