// Package input defines the platform-neutral input events delivered by the
// window to the engine and the widget dispatcher.
package input

import "github.com/hubastard/arbor/engine/geom"

type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

// EventChar carries one typed character after keyboard layout translation.
type EventChar struct{ Rune rune }

func (EventChar) isEvent() {}

// EventPaste carries clipboard text to insert at the focused widget.
type EventPaste struct{ Text string }

func (EventPaste) isEvent() {}

type EventMouseMove struct{ X, Y float32 }

func (EventMouseMove) isEvent() {}

type EventMouseButton struct {
	Button MouseButton
	Down   bool
	X, Y   float32
	Mods   Mod
}

func (EventMouseButton) isEvent() {}

// EventScroll is a wheel or trackpad scroll at the pointer position, in
// notches. Positive DY is the wheel moving away from the user, which scrolls
// towards the start of the content.
type EventScroll struct {
	DX, DY float32
	X, Y   float32
}

func (EventScroll) isEvent() {}

// EventClick is synthesized by the widget dispatcher when a button is
// pressed and released over the same widget.
type EventClick struct {
	Button MouseButton
	X, Y   float32
}

func (EventClick) isEvent() {}

// Position returns the pointer position carried by pointer events.
func Position(ev Event) (geom.Point, bool) {
	switch e := ev.(type) {
	case EventMouseMove:
		return geom.Pt(e.X, e.Y), true
	case EventMouseButton:
		return geom.Pt(e.X, e.Y), true
	case EventScroll:
		return geom.Pt(e.X, e.Y), true
	case EventClick:
		return geom.Pt(e.X, e.Y), true
	}
	return geom.Point{}, false
}
