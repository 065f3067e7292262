package ui

import (
	"fmt"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

type Kind uint8

const (
	KindContainer Kind = iota
	KindLabel
	KindButton
	KindImage
	KindToggle
	KindScroll
	KindTextField
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "Container"
	case KindLabel:
		return "Label"
	case KindButton:
		return "Button"
	case KindImage:
		return "Image"
	case KindToggle:
		return "Toggle"
	case KindScroll:
		return "Scroll"
	case KindTextField:
		return "TextField"
	case KindSpacer:
		return "Spacer"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// hasText reports whether the kind lays out State.Text.
func (k Kind) hasText() bool {
	return k == KindLabel || k == KindButton || k == KindToggle || k == KindTextField
}

// Align positions children inside leftover space. On the cross axis the
// zero value stretches children to fill it; on the main axis it behaves as
// AlignStart.
type Align uint8

const (
	AlignStretch Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// State is everything a node displays and lays out. Text is already
// translated; the tree never sees translation keys.
type State struct {
	Text       string
	Font       draw.FontHandle // zero uses the tree's default font
	FontSize   float32         // zero uses DefaultFontSize
	Color      colors.Color    // text color, image tint
	Background colors.Color

	Image     draw.ImageHandle
	ImageSize geom.Size

	Checked bool
	Scroll  float32 // offset along Axis, scroll containers only

	Axis       geom.Axis
	Gap        float32
	Padding    geom.Insets
	Width      geom.Constraint
	Height     geom.Constraint
	MainAlign  Align
	CrossAlign Align
	Wrap       bool
	Clip       bool

	// Interaction state, maintained by the Dispatcher.
	Hot     bool
	Pressed bool
	Focused bool
}

const DefaultFontSize = 16

func (s State) fontSize() float32 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// Along returns the constraint on axis a.
func (s State) Along(a geom.Axis) geom.Constraint {
	if a == geom.Vertical {
		return s.Height
	}
	return s.Width
}

func affectsSize(a, b State) bool {
	return a.Text != b.Text ||
		a.Font != b.Font ||
		a.FontSize != b.FontSize ||
		a.ImageSize != b.ImageSize ||
		a.Axis != b.Axis ||
		a.Gap != b.Gap ||
		a.Padding != b.Padding ||
		a.Width != b.Width ||
		a.Height != b.Height ||
		a.Wrap != b.Wrap
}

// Patch mutates a node's state inside Tree.SetState.
type Patch func(*State)

func SetText(s string) Patch        { return func(st *State) { st.Text = s } }
func SetChecked(v bool) Patch       { return func(st *State) { st.Checked = v } }
func SetScroll(v float32) Patch     { return func(st *State) { st.Scroll = v } }
func SetColor(c colors.Color) Patch { return func(st *State) { st.Color = c } }
func SetBackground(c colors.Color) Patch {
	return func(st *State) { st.Background = c }
}
func SetWidth(c geom.Constraint) Patch  { return func(st *State) { st.Width = c } }
func SetHeight(c geom.Constraint) Patch { return func(st *State) { st.Height = c } }
func SetImage(img draw.ImageHandle, size geom.Size) Patch {
	return func(st *State) {
		st.Image = img
		st.ImageSize = size
	}
}
