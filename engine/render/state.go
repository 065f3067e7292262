package render

import (
	"fmt"

	"github.com/hubastard/arbor/engine/geom"
)

type State uint8

const (
	Idle State = iota
	FrameBegun
	Batching
	Flushing
	FramePresented
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case FrameBegun:
		return "FrameBegun"
	case Batching:
		return "Batching"
	case Flushing:
		return "Flushing"
	case FramePresented:
		return "FramePresented"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Frame tracks the frame protocol:
//
//	Idle -> FrameBegun -> (Batching <-> Flushing)* -> FramePresented -> Idle
//
// FramePresented returns to Idle when the next frame begins.
type Frame struct {
	state    State
	viewport geom.Size
	index    uint64
}

func (f *Frame) State() State        { return f.state }
func (f *Frame) Viewport() geom.Size { return f.viewport }

// Index is the number of frames begun so far.
func (f *Frame) Index() uint64 { return f.index }

// InFrame reports whether commands may currently be submitted.
func (f *Frame) InFrame() bool {
	return f.state == FrameBegun || f.state == Batching || f.state == Flushing
}

func (f *Frame) Begin(viewport geom.Size) error {
	if f.state == FramePresented {
		f.state = Idle
	}
	if f.state != Idle {
		return f.invalid("BeginFrame")
	}
	f.state = FrameBegun
	f.viewport = viewport
	f.index++
	return nil
}

// Submit moves a begun frame into Batching.
func (f *Frame) Submit() error {
	if f.state != FrameBegun && f.state != Batching {
		return f.invalid("Submit")
	}
	f.state = Batching
	return nil
}

// Flush runs fn in the Flushing state and returns to Batching. It is a no-op
// outside a frame.
func (f *Frame) Flush(fn func()) {
	if f.state != Batching && f.state != FrameBegun {
		return
	}
	f.state = Flushing
	fn()
	f.state = Batching
}

func (f *Frame) Present() error {
	if f.state != FrameBegun && f.state != Batching {
		return f.invalid("Present")
	}
	f.state = FramePresented
	return nil
}

// Abandon discards the current frame.
func (f *Frame) Abandon() { f.state = Idle }

func (f *Frame) invalid(op string) error {
	return fmt.Errorf("%w: %s in state %v", ErrInvalidRendererState, op, f.state)
}
