// Package render defines the capability interface every drawing backend
// implements, the frame state machine backends share, and a recording
// backend that needs no GPU.
package render

import (
	"errors"
	"fmt"

	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

var (
	// ErrInvalidRendererState reports a frame protocol violation, such as
	// Submit before BeginFrame. It is a programming error and is never
	// swallowed.
	ErrInvalidRendererState = errors.New("invalid renderer state")
	// ErrResourceExhausted reports that a texture or atlas could not be
	// allocated. Backends drop the offending command and keep the frame.
	ErrResourceExhausted = errors.New("renderer resource exhausted")
	// ErrUnknownHandle is returned when releasing a handle that was never
	// issued or was already released.
	ErrUnknownHandle = errors.New("unknown renderer handle")
)

// Renderer consumes draw commands and owns backend resources.
//
// A frame is BeginFrame, any number of Submit calls and Present. Submit
// executes commands strictly in order. Handles returned by RegisterFont and
// RegisterImage are never reused, even after Release.
type Renderer interface {
	BeginFrame(viewport geom.Size) error
	Submit(cmds []draw.Command) error
	Present() error

	RegisterFont(data []byte) (draw.FontHandle, error)
	RegisterImage(px Pixels) (draw.ImageHandle, error)
	Release(h draw.Handle) error

	Metrics() FontMetrics
	State() State
}

// FontMetrics measures text for layout. Unknown fonts measure with an
// approximation instead of failing.
type FontMetrics interface {
	Advance(f draw.FontHandle, size float32, s string) float32
	Ascent(f draw.FontHandle, size float32) float32
	LineHeight(f draw.FontHandle, size float32) float32
}

// Pixels is a tightly packed, row-major RGBA8 image with a top-left origin.
type Pixels struct {
	W, H int
	RGBA []byte
}

func (p Pixels) Validate() error {
	if p.W <= 0 || p.H <= 0 {
		return fmt.Errorf("invalid image size %dx%d", p.W, p.H)
	}
	if len(p.RGBA) != p.W*p.H*4 {
		return fmt.Errorf("image %dx%d needs %d bytes, got %d", p.W, p.H, p.W*p.H*4, len(p.RGBA))
	}
	return nil
}
