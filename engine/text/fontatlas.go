package text

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	arbordraw "github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
)

// ErrAtlasFull is returned when a glyph cannot be placed even at the
// atlas's maximum size.
var ErrAtlasFull = errors.New("glyph atlas full")

// GlyphKey identifies one rasterized glyph.
type GlyphKey struct {
	Font arbordraw.FontHandle
	Size float32
	Rune rune
}

// Glyph is a rasterized glyph placed in the atlas.
type Glyph struct {
	Advance float32
	Offset  geom.Point // pen position on the baseline to bitmap top-left
	W, H    int        // bitmap size
	X, Y    int        // bitmap position in the atlas
}

// Empty reports whether the glyph has no pixels (spaces, missing runes).
func (g Glyph) Empty() bool { return g.W == 0 || g.H == 0 }

const (
	atlasPadding = 2
	// A solid block at the origin lets untextured fills share the atlas
	// texture with text.
	whiteSize = 4
)

// Atlas is a single-channel glyph cache packed with a shelf packer. Glyphs
// are added lazily; when the atlas runs out of room it doubles and repacks
// every cached glyph in insertion order, up to its maximum size.
type Atlas struct {
	size, max int
	pix       *image.Alpha

	glyphs map[GlyphKey]Glyph
	masks  map[GlyphKey]*image.Alpha
	order  []GlyphKey

	x, y, rowH int

	dirty bool
	gen   uint64
}

func NewAtlas(initial, max int) *Atlas {
	if initial < whiteSize+atlasPadding {
		initial = 512
	}
	if max < initial {
		max = initial
	}
	a := &Atlas{
		max:    max,
		glyphs: make(map[GlyphKey]Glyph),
		masks:  make(map[GlyphKey]*image.Alpha),
	}
	a.reset(initial)
	return a
}

func (a *Atlas) Size() int           { return a.size }
func (a *Atlas) MaxSize() int        { return a.max }
func (a *Atlas) Len() int            { return len(a.glyphs) }
func (a *Atlas) Dirty() bool         { return a.dirty }
func (a *Atlas) MarkClean()          { a.dirty = false }
func (a *Atlas) Alpha() *image.Alpha { return a.pix }

// Generation increases every time the atlas is resized or repacked, which
// invalidates glyph positions handed out earlier.
func (a *Atlas) Generation() uint64 { return a.gen }

func (a *Atlas) Lookup(k GlyphKey) (Glyph, bool) {
	g, ok := a.glyphs[k]
	return g, ok
}

// Insert rasterizes k.Rune with face and packs it. A cached glyph is
// returned as is. Runes the face lacks are cached as empty glyphs.
func (a *Atlas) Insert(k GlyphKey, face font.Face) (Glyph, error) {
	if g, ok := a.glyphs[k]; ok {
		return g, nil
	}

	dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, k.Rune)
	g := Glyph{Advance: fixedToFloat(adv)}
	if ok {
		g.Offset = geom.Pt(float32(dr.Min.X), float32(dr.Min.Y))
		g.W, g.H = dr.Dx(), dr.Dy()
	}
	if g.Empty() {
		a.glyphs[k] = g
		return g, nil
	}
	if g.W > a.max || g.H > a.max {
		return Glyph{}, fmt.Errorf("%w: glyph %q is %dx%d, max %d", ErrAtlasFull, k.Rune, g.W, g.H, a.max)
	}

	bm := image.NewAlpha(image.Rect(0, 0, g.W, g.H))
	draw.Draw(bm, bm.Bounds(), mask, maskp, draw.Src)

	p, placed := a.place(g.W, g.H)
	for !placed {
		if a.size >= a.max {
			return Glyph{}, fmt.Errorf("%w: %d glyphs at %dx%d", ErrAtlasFull, len(a.order), a.size, a.size)
		}
		if err := a.rebuild(min(a.size*2, a.max)); err != nil {
			return Glyph{}, err
		}
		p, placed = a.place(g.W, g.H)
	}

	g.X, g.Y = p.X, p.Y
	draw.Draw(a.pix, image.Rect(p.X, p.Y, p.X+g.W, p.Y+g.H), bm, image.Point{}, draw.Src)
	a.glyphs[k] = g
	a.masks[k] = bm
	a.order = append(a.order, k)
	a.dirty = true
	return g, nil
}

// Evict drops every glyph of font f and repacks the remainder.
func (a *Atlas) Evict(f arbordraw.FontHandle) int {
	n := 0
	kept := a.order[:0]
	for _, k := range a.order {
		if k.Font == f {
			n++
			continue
		}
		kept = append(kept, k)
	}
	a.order = kept
	for k := range a.glyphs {
		if k.Font == f {
			delete(a.glyphs, k)
			delete(a.masks, k)
		}
	}
	if n > 0 {
		// Shrinking the set never needs more room than before.
		_ = a.rebuild(a.size)
	}
	return n
}

// UV returns the normalized texture coordinates of g.
func (a *Atlas) UV(g Glyph) (u0, v0, u1, v1 float32) {
	s := float32(a.size)
	return float32(g.X) / s, float32(g.Y) / s, float32(g.X+g.W) / s, float32(g.Y+g.H) / s
}

// WhiteUV returns a texture coordinate inside the solid block.
func (a *Atlas) WhiteUV() (u, v float32) {
	c := float32(whiteSize) / 2 / float32(a.size)
	return c, c
}

// RGBA expands the atlas to white texels carrying glyph coverage in alpha.
func (a *Atlas) RGBA() []byte {
	out := make([]byte, a.size*a.size*4)
	for i, c := range a.pix.Pix {
		out[i*4+0] = 0xff
		out[i*4+1] = 0xff
		out[i*4+2] = 0xff
		out[i*4+3] = c
	}
	return out
}

func (a *Atlas) reset(size int) {
	a.size = size
	a.pix = image.NewAlpha(image.Rect(0, 0, size, size))
	for y := 0; y < whiteSize; y++ {
		for x := 0; x < whiteSize; x++ {
			a.pix.Pix[y*a.pix.Stride+x] = 0xff
		}
	}
	a.x, a.y, a.rowH = whiteSize+atlasPadding, 0, whiteSize
	a.dirty = true
}

// rebuild repacks all cached glyphs into an atlas of at least size pixels,
// doubling further if they do not fit.
func (a *Atlas) rebuild(size int) error {
	for {
		if a.repack(size) {
			a.gen++
			return nil
		}
		if size >= a.max {
			return fmt.Errorf("%w: repack of %d glyphs exceeds %dx%d", ErrAtlasFull, len(a.order), a.max, a.max)
		}
		size = min(size*2, a.max)
	}
}

func (a *Atlas) repack(size int) bool {
	a.reset(size)
	for _, k := range a.order {
		g := a.glyphs[k]
		p, ok := a.place(g.W, g.H)
		if !ok {
			return false
		}
		g.X, g.Y = p.X, p.Y
		draw.Draw(a.pix, image.Rect(p.X, p.Y, p.X+g.W, p.Y+g.H), a.masks[k], image.Point{}, draw.Src)
		a.glyphs[k] = g
	}
	return true
}

func (a *Atlas) place(w, h int) (image.Point, bool) {
	if a.x+w > a.size {
		a.x = 0
		a.y += a.rowH + atlasPadding
		a.rowH = 0
	}
	if a.x+w > a.size || a.y+h > a.size {
		return image.Point{}, false
	}
	p := image.Pt(a.x, a.y)
	a.x += w + atlasPadding
	if h > a.rowH {
		a.rowH = h
	}
	return p, true
}
