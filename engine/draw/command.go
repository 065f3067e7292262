package draw

import (
	"fmt"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/geom"
)

type Kind uint8

const (
	KindFillRect Kind = iota
	KindDrawText
	KindDrawImage
	KindPushClip
	KindPopClip
)

func (k Kind) String() string {
	switch k {
	case KindFillRect:
		return "FillRect"
	case KindDrawText:
		return "DrawText"
	case KindDrawImage:
		return "DrawImage"
	case KindPushClip:
		return "PushClip"
	case KindPopClip:
		return "PopClip"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is one backend-neutral drawing instruction. Only the fields relevant
// to Kind are meaningful:
//
//	FillRect   Rect, Color
//	DrawText   Rect (line box), Origin (baseline start), Text, Font, Size, Color
//	DrawImage  Rect (destination), Image, Color (tint)
//	PushClip   Rect
//	PopClip    -
type Command struct {
	Kind   Kind
	Rect   geom.Rect
	Color  colors.Color
	Origin geom.Point
	Text   string
	Font   FontHandle
	Size   float32
	Image  ImageHandle
}

func FillRect(r geom.Rect, c colors.Color) Command {
	return Command{Kind: KindFillRect, Rect: r, Color: c}
}

// Text draws a single line whose baseline starts at origin. box is the line's
// layout box, used for culling.
func Text(box geom.Rect, origin geom.Point, s string, font FontHandle, size float32, c colors.Color) Command {
	return Command{Kind: KindDrawText, Rect: box, Origin: origin, Text: s, Font: font, Size: size, Color: c}
}

func Image(dst geom.Rect, img ImageHandle, tint colors.Color) Command {
	return Command{Kind: KindDrawImage, Rect: dst, Image: img, Color: tint}
}

func PushClip(r geom.Rect) Command { return Command{Kind: KindPushClip, Rect: r} }
func PopClip() Command             { return Command{Kind: KindPopClip} }

func (c Command) String() string {
	r := c.Rect
	switch c.Kind {
	case KindFillRect:
		return fmt.Sprintf("FillRect(%g,%g %gx%g %v)", r.X, r.Y, r.W, r.H, c.Color)
	case KindDrawText:
		return fmt.Sprintf("DrawText(%q @%g,%g %v %gpx)", c.Text, c.Origin.X, c.Origin.Y, c.Font, c.Size)
	case KindDrawImage:
		return fmt.Sprintf("DrawImage(%v %g,%g %gx%g)", c.Image, r.X, r.Y, r.W, r.H)
	case KindPushClip:
		return fmt.Sprintf("PushClip(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
	case KindPopClip:
		return "PopClip"
	}
	return c.Kind.String()
}
