package draw

import (
	"errors"
	"fmt"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/geom"
)

var ErrUnbalancedClip = errors.New("unbalanced clip")

// List accumulates commands for one frame. It is reused across frames:
// Reset keeps the backing array.
type List struct {
	cmds  []Command
	depth int
}

func NewList(capacity int) *List {
	return &List{cmds: make([]Command, 0, capacity)}
}

func (l *List) Reset() {
	l.cmds = l.cmds[:0]
	l.depth = 0
}

// Commands returns the recorded commands. The slice is only valid until the
// next Reset.
func (l *List) Commands() []Command { return l.cmds }
func (l *List) Len() int            { return len(l.cmds) }

// Depth is the number of clips currently open.
func (l *List) Depth() int { return l.depth }

func (l *List) Add(c Command) {
	switch c.Kind {
	case KindPushClip:
		l.depth++
	case KindPopClip:
		if l.depth == 0 {
			return
		}
		l.depth--
	}
	l.cmds = append(l.cmds, c)
}

func (l *List) FillRect(r geom.Rect, c colors.Color) { l.Add(FillRect(r, c)) }
func (l *List) Image(dst geom.Rect, img ImageHandle, tint colors.Color) {
	l.Add(Image(dst, img, tint))
}
func (l *List) Text(box geom.Rect, origin geom.Point, s string, font FontHandle, size float32, c colors.Color) {
	l.Add(Text(box, origin, s, font, size, c))
}
func (l *List) PushClip(r geom.Rect) { l.Add(PushClip(r)) }

// PopClip closes the innermost clip. A pop with no open clip is dropped.
func (l *List) PopClip() { l.Add(PopClip()) }

// CheckClips verifies PushClip/PopClip stack discipline: no prefix pops more
// than it pushed and the sequence ends balanced.
func CheckClips(cmds []Command) error {
	depth := 0
	for i, c := range cmds {
		switch c.Kind {
		case KindPushClip:
			depth++
		case KindPopClip:
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: PopClip at %d without PushClip", ErrUnbalancedClip, i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d clips left open", ErrUnbalancedClip, depth)
	}
	return nil
}
