// Package ui holds the retained widget tree: an arena of nodes addressed by
// generational ids, the flex layout engine, draw-command emission and the
// event dispatcher.
package ui

import (
	"errors"
	"fmt"

	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/render"
	"github.com/hubastard/arbor/engine/text"
)

var (
	// ErrStaleReference is returned for ids whose node was removed.
	ErrStaleReference = errors.New("stale node reference")
	// ErrConstraintOverflow describes a node whose children's minimum sizes
	// exceed its space. Layout logs it and clips; it is never returned.
	ErrConstraintOverflow = errors.New("constraint overflow")
)

// NodeID addresses a node in a Tree. The zero NodeID refers to no node.
type NodeID struct {
	index uint32
	gen   uint32
}

func (id NodeID) IsZero() bool   { return id.index == 0 }
func (id NodeID) String() string { return fmt.Sprintf("node(%d@%d)", id.index, id.gen) }

type node struct {
	gen  uint32
	live bool

	kind     Kind
	state    State
	parent   NodeID
	children []NodeID

	rect      geom.Rect
	placed    bool
	relayout  bool
	intrinsic geom.Size
	measured  bool
	dirty     bool
	descDirty bool
	lines     []string
	content   float32 // main-axis extent of children, scroll containers only
	overflow  bool
}

// Tree is an arena of widget nodes. Slot 0 is never used so the zero NodeID
// is always invalid. Removed slots are reused with a bumped generation.
type Tree struct {
	nodes       []node
	free        []uint32
	live        int
	metrics     render.FontMetrics
	defaultFont draw.FontHandle

	// layout pass state
	layoutRoot NodeID
	unstable   bool
}

// NewTree creates an empty tree measuring text with m. A nil m measures
// with fixed approximations.
func NewTree(m render.FontMetrics) *Tree {
	if m == nil {
		m = text.NewLibrary()
	}
	return &Tree{nodes: make([]node, 1, 64), metrics: m}
}

// SetDefaultFont sets the font used by text nodes without their own.
func (t *Tree) SetDefaultFont(f draw.FontHandle) {
	if t.defaultFont == f {
		return
	}
	t.defaultFont = f
	for i := range t.nodes {
		if n := &t.nodes[i]; n.live && n.state.Font == 0 {
			n.dirty = true
			n.measured = false
		}
	}
	for i := range t.nodes {
		if n := &t.nodes[i]; n.live && n.dirty {
			t.markAncestors(n.parent, true)
		}
	}
}

func (t *Tree) SetMetrics(m render.FontMetrics) {
	t.metrics = m
	for i := range t.nodes {
		t.nodes[i].dirty = true
		t.nodes[i].measured = false
	}
}

func (t *Tree) get(id NodeID) (*node, error) {
	if id.index == 0 || int(id.index) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: %v", ErrStaleReference, id)
	}
	n := &t.nodes[id.index]
	if !n.live || n.gen != id.gen {
		return nil, fmt.Errorf("%w: %v", ErrStaleReference, id)
	}
	return n, nil
}

// Contains reports whether id refers to a live node.
func (t *Tree) Contains(id NodeID) bool {
	_, err := t.get(id)
	return err == nil
}

func (t *Tree) Len() int { return t.live }

// Insert adds a node of kind with state as the last child of parent. A zero
// parent creates a new root.
func (t *Tree) Insert(parent NodeID, kind Kind, state State) (NodeID, error) {
	var p *node
	if !parent.IsZero() {
		var err error
		if p, err = t.get(parent); err != nil {
			return NodeID{}, err
		}
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node{})
		idx = uint32(len(t.nodes) - 1)
		// Appending may have moved the parent.
		if p != nil {
			p = &t.nodes[parent.index]
		}
	}

	n := &t.nodes[idx]
	gen := n.gen + 1
	*n = node{gen: gen, live: true, kind: kind, state: state, parent: parent, dirty: true}
	id := NodeID{index: idx, gen: gen}
	t.live++

	if p != nil {
		p.children = append(p.children, id)
		p.dirty = true
		t.markAncestors(p.parent, true)
	}
	return id, nil
}

// Add inserts a widget built with the constructors in widgets.go.
func (t *Tree) Add(parent NodeID, w Widget) (NodeID, error) {
	return t.Insert(parent, w.Kind, w.State)
}

// Remove deletes id and its subtree. Every id in the subtree becomes stale.
func (t *Tree) Remove(id NodeID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if p, err := t.get(n.parent); err == nil {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		p.dirty = true
		t.markAncestors(p.parent, true)
	}
	t.freeSubtree(id)
	return nil
}

func (t *Tree) freeSubtree(id NodeID) {
	n := &t.nodes[id.index]
	for _, c := range n.children {
		if t.Contains(c) {
			t.freeSubtree(c)
		}
	}
	gen := n.gen
	*n = node{gen: gen}
	t.free = append(t.free, id.index)
	t.live--
}

// SetState applies patches to id's state. The node is always marked dirty;
// its ancestors are marked dirty as well when the patch changed anything that
// affects intrinsic size.
func (t *Tree) SetState(id NodeID, patches ...Patch) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	before := n.state
	for _, p := range patches {
		p(&n.state)
	}
	n.dirty = true
	if affectsSize(before, n.state) {
		n.measured = false
		t.markAncestors(n.parent, true)
	} else {
		t.markAncestors(n.parent, false)
	}
	return nil
}

func (t *Tree) State(id NodeID) (State, error) {
	n, err := t.get(id)
	if err != nil {
		return State{}, err
	}
	return n.state, nil
}

func (t *Tree) Kind(id NodeID) (Kind, error) {
	n, err := t.get(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Children returns a copy of id's ordered child list.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	return append([]NodeID(nil), n.children...), nil
}

// Parent returns id's parent, or the zero NodeID for a root.
func (t *Tree) Parent(id NodeID) (NodeID, error) {
	n, err := t.get(id)
	if err != nil {
		return NodeID{}, err
	}
	return n.parent, nil
}

// Rect returns the absolute rectangle computed by the last layout.
func (t *Tree) Rect(id NodeID) (geom.Rect, error) {
	n, err := t.get(id)
	if err != nil {
		return geom.Rect{}, err
	}
	return n.rect, nil
}

// Overflowed reports whether the last layout could not fit id's children
// even at their minimum sizes.
func (t *Tree) Overflowed(id NodeID) bool {
	n, err := t.get(id)
	return err == nil && n.overflow
}

// MarkDirty forces id and its ancestors to be measured and arranged again.
func (t *Tree) MarkDirty(id NodeID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.dirty = true
	n.measured = false
	t.markAncestors(n.parent, true)
	return nil
}

// IsDirty reports whether id awaits layout.
func (t *Tree) IsDirty(id NodeID) bool {
	n, err := t.get(id)
	return err == nil && (n.dirty || n.descDirty)
}

// markAncestors walks from id to the root. With full set the ancestors are
// re-measured; otherwise they only learn that a descendant needs arranging.
func (t *Tree) markAncestors(id NodeID, full bool) {
	for !id.IsZero() {
		n, err := t.get(id)
		if err != nil {
			return
		}
		if full {
			n.dirty = true
			n.measured = false
		} else {
			n.descDirty = true
		}
		if id == t.layoutRoot {
			return
		}
		id = n.parent
	}
}

// Walk visits the subtree at root depth-first in pre-order, which is also
// paint order. Returning false from fn skips the node's children.
func (t *Tree) Walk(root NodeID, fn func(id NodeID, depth int) bool) error {
	if _, err := t.get(root); err != nil {
		return err
	}
	depth := 0
	t.walk(root,
		func(id NodeID, _ *node) bool {
			ok := fn(id, depth)
			if ok {
				depth++
			}
			return ok
		},
		func(NodeID, *node) { depth-- })
	return nil
}

// walk is the traversal shared by measuring, arranging, emission and hit
// testing. leave runs after the children of nodes whose enter returned true.
func (t *Tree) walk(id NodeID, enter func(NodeID, *node) bool, leave func(NodeID, *node)) {
	n, err := t.get(id)
	if err != nil {
		return
	}
	if !enter(id, n) {
		return
	}
	// enter may grow the arena; index children through the slice.
	for i := 0; i < len(t.nodes[id.index].children); i++ {
		t.walk(t.nodes[id.index].children[i], enter, leave)
	}
	if leave != nil {
		leave(id, &t.nodes[id.index])
	}
}
