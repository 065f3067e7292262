package text

import (
	"golang.org/x/image/math/fixed"

	"github.com/hubastard/arbor/engine/geom"
)

// Walk lays s out on a single baseline starting at origin and calls fn with
// each rune and its pen position. Kerning is applied between pairs. Newlines
// are not interpreted; callers split lines first.
func (f *Font) Walk(size float32, s string, origin geom.Point, fn func(r rune, pen geom.Point)) float32 {
	face, err := f.Face(size)
	if err != nil {
		pen := origin
		adv := FallbackAdvance * size
		for _, r := range s {
			if fn != nil {
				fn(r, pen)
			}
			pen.X += adv
		}
		return pen.X - origin.X
	}

	penX := origin.X
	prev := rune(-1)
	for _, r := range s {
		if prev >= 0 {
			penX += fixedToFloat(face.Kern(prev, r))
		}
		if fn != nil {
			fn(r, geom.Pt(penX, origin.Y))
		}
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance(' ')
		}
		penX += fixedToFloat(adv)
		prev = r
	}
	return penX - origin.X
}

// Measure returns the advance width of a single line.
func (f *Font) Measure(size float32, s string) float32 {
	return f.Walk(size, s, geom.Point{}, nil)
}

func fixedToFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }
