package ui

import (
	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

// Widget is a kind plus its initial state, built with the constructors
// below and inserted with Tree.Add.
//
//	id, _ := tree.Add(root, ui.Button("OK").Padding(geom.Symmetric(12, 6)).Flex(1))
type Widget struct {
	Kind  Kind
	State State
}

func Row(gap float32) Widget {
	return Widget{Kind: KindContainer, State: State{Axis: geom.Horizontal, Gap: gap}}
}

func Column(gap float32) Widget {
	return Widget{Kind: KindContainer, State: State{Axis: geom.Vertical, Gap: gap}}
}

func Label(s string) Widget {
	return Widget{Kind: KindLabel, State: State{Text: s, Color: colors.White}}
}

func Button(s string) Widget {
	return Widget{Kind: KindButton, State: State{
		Text:       s,
		Color:      colors.White,
		Background: colors.Accent,
		Padding:    geom.Symmetric(12, 6),
	}}
}

func Toggle(s string, checked bool) Widget {
	return Widget{Kind: KindToggle, State: State{Text: s, Checked: checked, Color: colors.White}}
}

// Image shows img at its native size w x h unless constrained.
func Image(img draw.ImageHandle, w, h float32) Widget {
	return Widget{Kind: KindImage, State: State{Image: img, ImageSize: geom.Sz(w, h), Color: colors.White}}
}

// ScrollView clips its children and scrolls them along axis.
func ScrollView(axis geom.Axis) Widget {
	return Widget{Kind: KindScroll, State: State{Axis: axis}}
}

func TextField(s string) Widget {
	return Widget{Kind: KindTextField, State: State{
		Text:       s,
		Color:      colors.White,
		Background: colors.RGB8(0x2a, 0x2e, 0x35),
		Padding:    geom.Symmetric(6, 4),
		Width:      geom.Between(120, 0),
	}}
}

// Spacer takes a share of leftover space along its parent's axis.
func Spacer(flex float32) Widget {
	return Widget{Kind: KindSpacer, State: State{Width: geom.Flex(flex), Height: geom.Flex(flex)}}
}

func (w Widget) Padding(in geom.Insets) Widget           { w.State.Padding = in; return w }
func (w Widget) Gap(v float32) Widget                    { w.State.Gap = v; return w }
func (w Widget) Width(c geom.Constraint) Widget          { w.State.Width = c; return w }
func (w Widget) Height(c geom.Constraint) Widget         { w.State.Height = c; return w }
func (w Widget) Background(c colors.Color) Widget        { w.State.Background = c; return w }
func (w Widget) Color(c colors.Color) Widget             { w.State.Color = c; return w }
func (w Widget) Font(f draw.FontHandle) Widget           { w.State.Font = f; return w }
func (w Widget) FontSize(size float32) Widget            { w.State.FontSize = size; return w }
func (w Widget) Wrap() Widget                            { w.State.Wrap = true; return w }
func (w Widget) Clip() Widget                            { w.State.Clip = true; return w }
func (w Widget) With(p Patch) Widget                     { p(&w.State); return w }
func (w Widget) Constrain(wc, hc geom.Constraint) Widget { return w.Width(wc).Height(hc) }

func (w Widget) Align(main, cross Align) Widget {
	w.State.MainAlign, w.State.CrossAlign = main, cross
	return w
}

// Size fixes both dimensions.
func (w Widget) Size(width, height float32) Widget {
	return w.Width(geom.Fixed(width)).Height(geom.Fixed(height))
}

// Flex sets the grow weight on both axes; the parent uses the one along its
// own axis.
func (w Widget) Flex(weight float32) Widget {
	w.State.Width.Flex = weight
	w.State.Height.Flex = weight
	return w
}
