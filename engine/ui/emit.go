package ui

import (
	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

// Emit returns the draw commands for the subtree at root in paint order.
func (t *Tree) Emit(root NodeID) []draw.Command {
	l := draw.NewList(64)
	t.EmitTo(root, l)
	return l.Commands()
}

// EmitTo appends the draw commands for the subtree at root to l. It reads
// the last layout and never modifies the tree. Every clip it pushes is
// popped before returning.
func (t *Tree) EmitTo(root NodeID, l *draw.List) {
	t.walk(root,
		func(_ NodeID, n *node) bool {
			t.emitNode(n, l)
			if clipsChildren(n) && len(n.children) > 0 {
				l.PushClip(childClip(n))
			}
			return true
		},
		func(_ NodeID, n *node) {
			if clipsChildren(n) && len(n.children) > 0 {
				l.PopClip()
			}
		})
}

func clipsChildren(n *node) bool {
	return n.kind == KindScroll || n.overflow || n.state.Clip
}

func childClip(n *node) geom.Rect {
	if n.kind == KindScroll {
		return n.rect.Inset(n.state.Padding)
	}
	return n.rect
}

func (t *Tree) emitNode(n *node, l *draw.List) {
	st := &n.state
	if bg := background(n); bg.Visible() && !n.rect.Empty() {
		l.FillRect(n.rect, bg)
	}

	inner := n.rect.Inset(st.Padding)
	switch n.kind {
	case KindLabel, KindTextField:
		t.emitText(n, inner, false, l)
		if n.kind == KindTextField && st.Focused {
			t.emitCaret(n, inner, l)
		}
	case KindButton:
		t.emitText(n, inner, true, l)
	case KindToggle:
		box := st.fontSize()
		boxRect := geom.R(inner.X, inner.Y+max(inner.H-box, 0)/2, box, box)
		boxColor := colors.Gray
		if st.Hot {
			boxColor = boxColor.Scale(1.2)
		}
		l.FillRect(boxRect, boxColor)
		if st.Checked {
			l.FillRect(boxRect.Inset(geom.Uniform(box/4)), colors.Accent)
		}
		textBox := inner
		textBox.X += box + box/2
		textBox.W = max(textBox.W-box-box/2, 0)
		t.emitText(n, textBox, false, l)
	case KindImage:
		if st.Image.Valid() && !inner.Empty() {
			l.Image(inner, st.Image, foreground(st.Color))
		}
	}
}

func background(n *node) colors.Color {
	bg := n.state.Background
	switch {
	case n.kind == KindButton && n.state.Pressed:
		bg = bg.Scale(0.8)
	case n.kind == KindButton && n.state.Hot:
		bg = bg.Scale(1.2)
	case n.kind == KindTextField && n.state.Focused:
		bg = bg.Scale(1.3)
	}
	return bg
}

// foreground maps the zero color to white, the default text color and image
// tint.
func foreground(c colors.Color) colors.Color {
	if c == (colors.Color{}) {
		return colors.White
	}
	return c
}

// emitText draws one DrawText per laid-out line. Text that does not fit box
// is wrapped in a clip.
func (t *Tree) emitText(n *node, box geom.Rect, center bool, l *draw.List) {
	color := foreground(n.state.Color)
	if n.state.Text == "" || !color.Visible() {
		return
	}
	f := t.font(&n.state)
	lh := t.metrics.LineHeight(f.handle, f.size)
	ascent := t.metrics.Ascent(f.handle, f.size)

	lines := n.lines
	if lines == nil {
		lines = []string{n.state.Text}
	}

	widths := make([]float32, len(lines))
	clip := float32(len(lines))*lh > box.H+epsilon
	for i, s := range lines {
		widths[i] = t.metrics.Advance(f.handle, f.size, s)
		if widths[i] > box.W+epsilon {
			clip = true
		}
	}

	if clip {
		l.PushClip(box)
	}
	y := box.Y
	if center {
		y += max(box.H-float32(len(lines))*lh, 0) / 2
	}
	for i, s := range lines {
		if s != "" {
			x := box.X
			if center {
				x += max(box.W-widths[i], 0) / 2
			}
			line := geom.R(x, y, widths[i], lh)
			l.Text(line, geom.Pt(x, y+ascent), s, f.handle, f.size, color)
		}
		y += lh
	}
	if clip {
		l.PopClip()
	}
}

func (t *Tree) emitCaret(n *node, box geom.Rect, l *draw.List) {
	f := t.font(&n.state)
	lh := t.metrics.LineHeight(f.handle, f.size)
	var x float32
	y := box.Y
	if k := len(n.lines); k > 0 {
		x = t.metrics.Advance(f.handle, f.size, n.lines[k-1])
		y += float32(k-1) * lh
	}
	caret := geom.R(box.X+min(x, max(box.W-1, 0)), y, 1, lh)
	l.FillRect(caret, foreground(n.state.Color))
}
