package ui

import (
	"strings"
	"unicode"

	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/input"
)

// Target is the result of hit testing: the deepest node under a point and
// the chain of its ancestors, root first.
type Target struct {
	Node NodeID
	Path []NodeID
}

// HitTest returns the deepest node under p using the last layout. Later
// siblings are tested first since they paint on top. Children of clipping
// nodes are only hit inside the clip.
func (t *Tree) HitTest(root NodeID, p geom.Point) (Target, bool) {
	var path []NodeID
	if !t.hit(root, p, &path) {
		return Target{}, false
	}
	return Target{Node: path[len(path)-1], Path: path}, true
}

func (t *Tree) hit(id NodeID, p geom.Point, path *[]NodeID) bool {
	n, err := t.get(id)
	if err != nil || !n.rect.Contains(p) {
		return false
	}
	*path = append(*path, id)
	if !clipsChildren(n) || childClip(n).Contains(p) {
		for i := len(n.children) - 1; i >= 0; i-- {
			if t.hit(n.children[i], p, path) {
				return true
			}
		}
	}
	return true
}

// path returns the ancestor chain of id, root first.
func (t *Tree) path(id NodeID) []NodeID {
	var rev []NodeID
	for !id.IsZero() {
		n, err := t.get(id)
		if err != nil {
			return nil
		}
		rev = append(rev, id)
		id = n.parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

type Phase uint8

const (
	PhaseCapture Phase = iota
	PhaseTarget
	PhaseBubble
)

// Event is the dispatcher's envelope around an input event.
type Event struct {
	Input   input.Event
	Target  NodeID
	Current NodeID
	Phase   Phase

	stopped   bool
	prevented bool
}

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault suppresses the built-in widget behaviour for this event.
func (e *Event) PreventDefault() { e.prevented = true }

type Handler func(t *Tree, ev *Event)

// Dispatcher routes input events to nodes of a tree. It holds node ids only;
// ids that went stale are dropped silently.
//
// Pointer events go to the node holding pointer capture, else to the hit
// node. Keyboard, character and paste events go to the focused node. Every
// event travels root to target through capture handlers, then target to root
// through bubble handlers.
type Dispatcher struct {
	tree *Tree
	root NodeID

	bubble  map[NodeID][]Handler
	capture map[NodeID][]Handler

	hover    NodeID
	captured NodeID
	focus    NodeID

	// Clipboard, when set, is read on Ctrl+V in a focused text field.
	Clipboard func() (string, error)
	// SetClipboard, when set, receives the text of a focused text field on
	// Ctrl+C and Ctrl+X.
	SetClipboard func(string) error
	// ScrollStep is the distance of one wheel notch in pixels.
	ScrollStep float32
}

func NewDispatcher(t *Tree, root NodeID) *Dispatcher {
	return &Dispatcher{
		tree:       t,
		root:       root,
		bubble:     make(map[NodeID][]Handler),
		capture:    make(map[NodeID][]Handler),
		ScrollStep: 40,
	}
}

// On registers a bubble-phase handler on id.
func (d *Dispatcher) On(id NodeID, h Handler) { d.bubble[id] = append(d.bubble[id], h) }

// OnCapture registers a capture-phase handler on id.
func (d *Dispatcher) OnCapture(id NodeID, h Handler) { d.capture[id] = append(d.capture[id], h) }

func (d *Dispatcher) Hovered() NodeID  { return d.live(d.hover) }
func (d *Dispatcher) Captured() NodeID { return d.live(d.captured) }
func (d *Dispatcher) Focused() NodeID  { return d.live(d.focus) }

func (d *Dispatcher) live(id NodeID) NodeID {
	if d.tree.Contains(id) {
		return id
	}
	return NodeID{}
}

// Focus moves keyboard focus to id. The zero id clears focus.
func (d *Dispatcher) Focus(id NodeID) error {
	if !id.IsZero() {
		if _, err := d.tree.get(id); err != nil {
			return err
		}
	}
	if old := d.live(d.focus); !old.IsZero() && old != id {
		_ = d.tree.SetState(old, func(s *State) { s.Focused = false })
	}
	d.focus = id
	if !id.IsZero() {
		return d.tree.SetState(id, func(s *State) { s.Focused = true })
	}
	return nil
}

// Prune forgets handlers registered on removed nodes.
func (d *Dispatcher) Prune() {
	for id := range d.bubble {
		if !d.tree.Contains(id) {
			delete(d.bubble, id)
		}
	}
	for id := range d.capture {
		if !d.tree.Contains(id) {
			delete(d.capture, id)
		}
	}
}

// Dispatch delivers ev and applies built-in widget behaviour. It reports
// whether any handler or behaviour consumed the event.
func (d *Dispatcher) Dispatch(ev input.Event) bool {
	switch e := ev.(type) {
	case input.EventMouseMove:
		return d.mouseMove(e)
	case input.EventMouseButton:
		if e.Down {
			return d.mouseDown(e)
		}
		return d.mouseUp(e)
	case input.EventScroll:
		return d.scroll(e)
	case input.EventKey, input.EventChar, input.EventPaste:
		return d.keyboard(ev)
	}
	return false
}

func (d *Dispatcher) mouseMove(e input.EventMouseMove) bool {
	p := geom.Pt(e.X, e.Y)
	hit, ok := d.tree.HitTest(d.root, p)

	if hot := d.live(d.hover); hot != hit.Node {
		if !hot.IsZero() {
			_ = d.tree.SetState(hot, func(s *State) { s.Hot = false })
		}
		if ok {
			_ = d.tree.SetState(hit.Node, func(s *State) { s.Hot = true })
		}
		d.hover = hit.Node
	}

	if c := d.live(d.captured); !c.IsZero() {
		hit = Target{Node: c, Path: d.tree.path(c)}
	} else if !ok {
		return false
	}
	handled, _ := d.propagate(hit, e)
	return handled
}

// mouseDown delivers a press. Only the left button captures the pointer,
// presses widgets and moves focus; other buttons are delivered as is.
func (d *Dispatcher) mouseDown(e input.EventMouseButton) bool {
	hit, ok := d.tree.HitTest(d.root, geom.Pt(e.X, e.Y))
	if e.Button != input.MouseLeft {
		if c := d.live(d.captured); !c.IsZero() {
			hit, ok = Target{Node: c, Path: d.tree.path(c)}, true
		}
		if !ok {
			return false
		}
		handled, _ := d.propagate(hit, e)
		return handled
	}

	// A left press without a release in between drops the stale capture.
	d.releaseCapture()
	if !ok {
		_ = d.Focus(NodeID{})
		return false
	}
	handled, ev := d.propagate(hit, e)
	if ev.prevented {
		return handled
	}

	d.captured = hit.Node
	_ = d.tree.SetState(hit.Node, func(s *State) { s.Pressed = true })

	field := d.nearest(hit.Path, KindTextField)
	if field != d.live(d.focus) {
		_ = d.Focus(field)
	}
	return true
}

// releaseCapture clears capture and returns the node that held it.
func (d *Dispatcher) releaseCapture() NodeID {
	c := d.live(d.captured)
	d.captured = NodeID{}
	if !c.IsZero() {
		_ = d.tree.SetState(c, func(s *State) { s.Pressed = false })
	}
	return c
}

func (d *Dispatcher) mouseUp(e input.EventMouseButton) bool {
	p := geom.Pt(e.X, e.Y)
	c := d.live(d.captured)
	if e.Button == input.MouseLeft {
		d.captured = NodeID{}
	}

	var target Target
	if !c.IsZero() {
		target = Target{Node: c, Path: d.tree.path(c)}
	} else {
		hit, ok := d.tree.HitTest(d.root, p)
		if !ok {
			return false
		}
		target = hit
	}

	handled, _ := d.propagate(target, e)
	if c.IsZero() || e.Button != input.MouseLeft {
		return handled
	}
	_ = d.tree.SetState(c, func(s *State) { s.Pressed = false })

	if r, err := d.tree.Rect(c); err != nil || !r.Contains(p) {
		return true
	}
	target.Path = d.tree.path(c)
	_, ev := d.propagate(target, input.EventClick{Button: e.Button, X: e.X, Y: e.Y})
	if !ev.prevented {
		if tog := d.nearest(target.Path, KindToggle); !tog.IsZero() {
			_ = d.tree.SetState(tog, func(s *State) { s.Checked = !s.Checked })
		}
	}
	return true
}

func (d *Dispatcher) scroll(e input.EventScroll) bool {
	hit, ok := d.tree.HitTest(d.root, geom.Pt(e.X, e.Y))
	if !ok {
		return false
	}
	handled, ev := d.propagate(hit, e)
	if ev.prevented {
		return handled
	}
	for i := len(hit.Path) - 1; i >= 0; i-- {
		id := hit.Path[i]
		n, err := d.tree.get(id)
		if err != nil || n.kind != KindScroll {
			continue
		}
		delta := e.DY
		if n.state.Axis == geom.Horizontal {
			delta = e.DX
			if delta == 0 {
				delta = e.DY
			}
		}
		viewport := n.rect.Inset(n.state.Padding).Size().Along(n.state.Axis)
		next := clampScroll(n.state.Scroll-delta*d.ScrollStep, n.content, viewport)
		if next == n.state.Scroll {
			continue
		}
		_ = d.tree.SetState(id, SetScroll(next))
		return true
	}
	return handled
}

func (d *Dispatcher) keyboard(ev input.Event) bool {
	f := d.live(d.focus)
	if f.IsZero() {
		return false
	}
	handled, env := d.propagate(Target{Node: f, Path: d.tree.path(f)}, ev)
	if env.prevented {
		return handled
	}
	if k, _ := d.tree.Kind(f); k != KindTextField {
		return handled
	}
	return d.editText(f, ev) || handled
}

func (d *Dispatcher) editText(id NodeID, ev input.Event) bool {
	switch e := ev.(type) {
	case input.EventChar:
		if !unicode.IsPrint(e.Rune) {
			return false
		}
		_ = d.tree.SetState(id, func(s *State) { s.Text += string(e.Rune) })
		return true
	case input.EventPaste:
		return d.paste(id, e.Text)
	case input.EventKey:
		if !e.Down {
			return false
		}
		switch {
		case e.Key == input.KeyBackspace:
			_ = d.tree.SetState(id, func(s *State) {
				r := []rune(s.Text)
				if len(r) > 0 {
					s.Text = string(r[:len(r)-1])
				}
			})
			return true
		case e.Key == input.KeyEscape:
			_ = d.Focus(NodeID{})
			return true
		case e.Key == input.KeyV && e.Mods&input.ModCtrl != 0 && d.Clipboard != nil:
			s, err := d.Clipboard()
			if err != nil {
				return false
			}
			return d.paste(id, s)
		case (e.Key == input.KeyC || e.Key == input.KeyX) && e.Mods&input.ModCtrl != 0 && d.SetClipboard != nil:
			st, err := d.tree.State(id)
			if err != nil || st.Text == "" {
				return false
			}
			if err := d.SetClipboard(st.Text); err != nil {
				return false
			}
			if e.Key == input.KeyX {
				_ = d.tree.SetState(id, SetText(""))
			}
			return true
		}
	}
	return false
}

// paste inserts s as a single line.
func (d *Dispatcher) paste(id NodeID, s string) bool {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if s == "" {
		return false
	}
	_ = d.tree.SetState(id, func(st *State) { st.Text += s })
	return true
}

// nearest returns the closest node of kind on path, searching from the
// target towards the root.
func (d *Dispatcher) nearest(path []NodeID, kind Kind) NodeID {
	for i := len(path) - 1; i >= 0; i-- {
		if k, err := d.tree.Kind(path[i]); err == nil && k == kind {
			return path[i]
		}
	}
	return NodeID{}
}

// propagate runs capture handlers root to target, then bubble handlers
// target to root. Nodes removed by a handler are skipped.
func (d *Dispatcher) propagate(target Target, in input.Event) (bool, *Event) {
	ev := &Event{Input: in, Target: target.Node}
	handled := false

	run := func(id NodeID, hs []Handler, phase Phase) {
		if id == target.Node {
			phase = PhaseTarget
		}
		for _, h := range hs {
			if ev.stopped || !d.tree.Contains(id) {
				return
			}
			ev.Current, ev.Phase = id, phase
			h(d.tree, ev)
			handled = true
		}
	}

	for _, id := range target.Path {
		if ev.stopped {
			break
		}
		run(id, d.capture[id], PhaseCapture)
	}
	for i := len(target.Path) - 1; i >= 0; i-- {
		if ev.stopped {
			break
		}
		run(target.Path[i], d.bubble[target.Path[i]], PhaseBubble)
	}
	return handled, ev
}
