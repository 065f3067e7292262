package ui

import (
	"strings"

	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/text"
)

// maxLayoutPasses bounds the fixed-point iteration needed when a node's
// height depends on the width it is given (wrapped text).
const maxLayoutPasses = 4

const epsilon = 1e-3

// Layout resolves the rectangle of every node under root within available.
//
// Measuring runs bottom-up and only revisits dirty nodes. Arranging runs
// top-down and skips any clean node whose allocated rectangle did not change;
// a clean node with dirty descendants re-places its children in their
// previous rectangles. Layout never fails: impossible constraints are
// clamped and clipped.
func (t *Tree) Layout(root NodeID, available geom.Size) {
	n, err := t.get(root)
	if err != nil {
		logging.Logger().Warn("layout skipped", "err", err)
		return
	}
	t.layoutRoot = root
	defer func() { t.layoutRoot = NodeID{} }()

	rect := geom.Rect{
		W: stretch(n.state.Width.Normalize(), available.W),
		H: stretch(n.state.Height.Normalize(), available.H),
	}

	for pass := 1; ; pass++ {
		t.unstable = false
		t.measure(root)
		t.place(root, rect)
		t.arrange(root)
		if !t.unstable {
			return
		}
		if pass >= maxLayoutPasses {
			logging.Logger().Warn("layout did not settle; keeping last pass", "root", root, "passes", pass)
			t.walk(root, func(_ NodeID, n *node) bool {
				n.dirty, n.descDirty, n.measured = false, false, true
				return true
			}, nil)
			return
		}
	}
}

func stretch(c geom.Constraint, avail float32) float32 {
	if c.HasPreferred {
		return c.Preferred
	}
	return c.Clamp(avail)
}

// measure recomputes intrinsic sizes of dirty nodes, children first.
func (t *Tree) measure(root NodeID) {
	t.walk(root,
		func(_ NodeID, n *node) bool {
			return n.dirty || n.descDirty || !n.measured
		},
		func(_ NodeID, n *node) {
			if n.dirty || !n.measured {
				n.intrinsic = t.intrinsic(n)
				n.measured = true
			}
		})
}

// intrinsic is the content size of n including padding, before its own
// constraints are applied.
func (t *Tree) intrinsic(n *node) geom.Size {
	st := &n.state
	var content geom.Size

	switch n.kind {
	case KindLabel, KindButton, KindTextField:
		content = t.textSize(st, strings.Split(st.Text, "\n"))
	case KindToggle:
		box := st.fontSize()
		content = geom.Sz(box, box)
		if st.Text != "" {
			ts := t.textSize(st, strings.Split(st.Text, "\n"))
			content.W += box/2 + ts.W
			content.H = max(content.H, ts.H)
		}
	case KindImage:
		content = st.ImageSize
	case KindContainer, KindScroll:
		axis := st.Axis
		cross := axis.Cross()
		var main, crossMax float32
		count := 0
		for _, c := range n.children {
			cn, err := t.get(c)
			if err != nil {
				continue
			}
			main += cn.state.Along(axis).Normalize().Resolve(cn.intrinsic.Along(axis))
			crossMax = max(crossMax, cn.state.Along(cross).Normalize().Resolve(cn.intrinsic.Along(cross)))
			count++
		}
		if count > 1 {
			main += st.Gap * float32(count-1)
		}
		if axis == geom.Horizontal {
			content = geom.Sz(main, crossMax)
		} else {
			content = geom.Sz(crossMax, main)
		}
	}

	return geom.Sz(content.W+st.Padding.Horizontal(), content.H+st.Padding.Vertical())
}

type textFont struct {
	handle draw.FontHandle
	size   float32
}

func (t *Tree) font(st *State) textFont {
	f := textFont{handle: st.Font, size: st.fontSize()}
	if f.handle == 0 {
		f.handle = t.defaultFont
	}
	return f
}

func (t *Tree) measurer(f textFont) func(string) float32 {
	return func(s string) float32 { return t.metrics.Advance(f.handle, f.size, s) }
}

func (t *Tree) textSize(st *State, lines []string) geom.Size {
	f := t.font(st)
	measure := t.measurer(f)
	if st.Text == "" {
		return geom.Sz(0, t.metrics.LineHeight(f.handle, f.size))
	}
	return geom.Sz(text.Widest(lines, measure), float32(len(lines))*t.metrics.LineHeight(f.handle, f.size))
}

// place assigns slot to id and decides whether its subtree must be arranged.
func (t *Tree) place(id NodeID, slot geom.Rect) {
	n, err := t.get(id)
	if err != nil {
		return
	}
	if n.placed && n.rect == slot && !n.dirty {
		n.relayout = false
		return
	}
	n.rect = slot
	n.placed = true
	n.relayout = true
}

// arrange walks the tree top-down. Every node's rect has been placed by its
// parent before the node is entered.
func (t *Tree) arrange(root NodeID) {
	t.walk(root, func(id NodeID, n *node) bool {
		if !n.relayout && !n.descDirty {
			return false
		}
		if n.relayout {
			t.arrangeNode(id, n)
		} else {
			for _, c := range n.children {
				if cn, err := t.get(c); err == nil {
					t.place(c, cn.rect)
				}
			}
		}
		n.relayout, n.dirty, n.descDirty = false, false, false
		return true
	}, nil)
}

func (t *Tree) arrangeNode(id NodeID, n *node) {
	n.overflow = false
	switch n.kind {
	case KindContainer, KindScroll:
		t.arrangeChildren(id, n)
	case KindLabel, KindButton, KindTextField, KindToggle:
		t.wrapText(id, n)
	}
}

// wrapText lays out the node's text for its resolved width. When wrapping
// changes the node's height the ancestors are measured again in another
// pass.
func (t *Tree) wrapText(id NodeID, n *node) {
	st := &n.state
	inner := n.rect.Inset(st.Padding)
	width := inner.W
	if n.kind == KindToggle {
		box := st.fontSize()
		width -= box + box/2
	}

	if !st.Wrap {
		n.lines = strings.Split(st.Text, "\n")
		return
	}
	f := t.font(st)
	n.lines = text.Wrap(st.Text, max(width, 0), t.measurer(f))

	h := float32(len(n.lines))*t.metrics.LineHeight(f.handle, f.size) + st.Padding.Vertical()
	if n.kind == KindToggle {
		h = max(h, st.fontSize()+st.Padding.Vertical())
	}
	hc := st.Height.Normalize()
	if hc.Resolve(h) != hc.Resolve(n.intrinsic.H) {
		n.intrinsic.H = h
		if id != t.layoutRoot {
			t.markAncestors(n.parent, true)
			t.unstable = true
		}
	}
}

type flexItem struct {
	id     NodeID
	c      geom.Constraint
	pref   float32
	size   float32
	frozen bool
}

func (t *Tree) arrangeChildren(id NodeID, n *node) {
	st := n.state
	axis, cross := st.Axis, st.Axis.Cross()
	inner := n.rect.Inset(st.Padding)
	scroll := n.kind == KindScroll

	items := make([]flexItem, 0, len(n.children))
	for _, c := range n.children {
		cn, err := t.get(c)
		if err != nil {
			continue
		}
		cc := cn.state.Along(axis).Normalize()
		items = append(items, flexItem{id: c, c: cc, pref: cc.Resolve(cn.intrinsic.Along(axis))})
	}
	if len(items) == 0 {
		n.content = 0
		return
	}

	mainAvail := inner.Size().Along(axis) - st.Gap*float32(len(items)-1)
	crossAvail := inner.Size().Along(cross)

	overflow := distribute(items, mainAvail, !scroll)

	var used float32
	for _, it := range items {
		used += it.size
	}
	n.content = used + st.Gap*float32(len(items)-1)

	cursor := start(inner, axis)
	if leftover := mainAvail - used; leftover > 0 && !scroll {
		switch st.MainAlign {
		case AlignCenter:
			cursor += leftover / 2
		case AlignEnd:
			cursor += leftover
		}
	}
	if scroll {
		cursor -= clampScroll(st.Scroll, n.content, inner.Size().Along(axis))
	}

	for _, it := range items {
		cn, err := t.get(it.id)
		if err != nil {
			continue
		}
		cc := cn.state.Along(cross).Normalize()
		var cs float32
		switch {
		case cc.HasPreferred:
			cs = cc.Preferred
		case st.CrossAlign == AlignStretch:
			cs = cc.Clamp(crossAvail)
		default:
			cs = cc.Resolve(cn.intrinsic.Along(cross))
		}
		if cs > crossAvail {
			cs = max(cc.Min, crossAvail)
			if cs > crossAvail+epsilon {
				overflow = true
			}
		}
		var off float32
		switch st.CrossAlign {
		case AlignCenter:
			off = max((crossAvail-cs)/2, 0)
		case AlignEnd:
			off = max(crossAvail-cs, 0)
		}

		var r geom.Rect
		if axis == geom.Horizontal {
			r = geom.R(cursor, inner.Y+off, it.size, cs)
		} else {
			r = geom.R(inner.X+off, cursor, cs, it.size)
		}
		t.place(it.id, r)
		cursor += it.size + st.Gap
	}

	n.overflow = overflow
	if overflow {
		logging.Logger().Debug("children overflow their container",
			"err", ErrConstraintOverflow, "node", id, "rect", n.rect)
	}
}

// distribute sizes items along the main axis within avail and reports
// whether their minimum sizes overflow it.
//
// Items without flex get their preferred size. Leftover space is shared by
// flex items in proportion to their weight, starting from zero; items
// clamped by their bounds are frozen and the rest is redistributed. When the
// preferred sizes exceed avail and compress is set, items shrink in
// proportion to their preferred size but never below their minimum.
func distribute(items []flexItem, avail float32, compress bool) bool {
	var fixed, weight float32
	for i := range items {
		it := &items[i]
		if it.c.Flex > 0 {
			it.size = it.c.Min
			weight += it.c.Flex
			continue
		}
		it.size = it.pref
		fixed += it.pref
	}

	if free := avail - fixed; weight > 0 && free > 0 {
		growFlex(items, free)
	}

	var used float32
	for _, it := range items {
		used += it.size
	}
	if !compress || used <= avail+epsilon {
		return false
	}
	return shrink(items, used-avail) > epsilon
}

func growFlex(items []flexItem, free float32) {
	for {
		remaining, weight := free, float32(0)
		for _, it := range items {
			switch {
			case it.c.Flex <= 0:
			case it.frozen:
				remaining -= it.size
			default:
				weight += it.c.Flex
			}
		}
		if weight == 0 {
			return
		}
		violated := false
		for i := range items {
			it := &items[i]
			if it.c.Flex <= 0 || it.frozen {
				continue
			}
			s := max(remaining, 0) * it.c.Flex / weight
			if cl := it.c.Clamp(s); cl != s {
				it.size = cl
				it.frozen = true
				violated = true
				continue
			}
			it.size = s
		}
		if !violated {
			return
		}
	}
}

// shrink removes over from items in proportion to their preferred sizes,
// never going below an item's minimum. It returns the part of over that
// could not be removed.
func shrink(items []flexItem, over float32) float32 {
	for over > epsilon {
		var total float32
		for _, it := range items {
			if it.size > it.c.Min+epsilon {
				total += it.pref
			}
		}
		if total <= 0 {
			return over
		}
		var cut float32
		for i := range items {
			it := &items[i]
			if it.size <= it.c.Min+epsilon {
				continue
			}
			d := min(over*it.pref/total, it.size-it.c.Min)
			it.size -= d
			cut += d
		}
		over -= cut
		if cut <= epsilon {
			return over
		}
	}
	return 0
}

func start(r geom.Rect, a geom.Axis) float32 {
	if a == geom.Vertical {
		return r.Y
	}
	return r.X
}

func clampScroll(offset, content, viewport float32) float32 {
	return min(max(offset, 0), max(content-viewport, 0))
}
