// Package text parses fonts, measures and wraps strings, and packs glyphs
// into the atlas used by the GPU renderer.
package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed OpenType/TrueType font. Faces are created per pixel size on
// first use and cached.
type Font struct {
	src   *opentype.Font
	faces map[float32]font.Face
}

// Parse parses TTF/OTF data. The data must not be modified afterwards.
func Parse(data []byte) (*Font, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Font{src: ft, faces: make(map[float32]font.Face)}, nil
}

// Face returns the face for size pixels.
func (f *Font) Face(size float32) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.src, &opentype.FaceOptions{
		Size: float64(size), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face %gpx: %w", size, err)
	}
	f.faces[size] = face
	return face, nil
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent  float32 // baseline to top
	Descent float32 // baseline to bottom, positive
	LineGap float32
}

func (m Metrics) LineHeight() float32 { return m.Ascent + m.Descent + m.LineGap }

func (f *Font) Metrics(size float32) Metrics {
	face, err := f.Face(size)
	if err != nil {
		return fallbackMetrics(size)
	}
	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(m.Descent.Round())
	return Metrics{
		Ascent:  ascent,
		Descent: descent,
		LineGap: float32(m.Height.Round()) - ascent - descent,
	}
}

// Close releases every cached face.
func (f *Font) Close() error {
	var first error
	for size, face := range f.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.faces, size)
	}
	return first
}

// Approximate metrics used for fonts no renderer knows about, so layout of a
// tree without registered fonts still produces stable, non-zero sizes.
const (
	FallbackAdvance    = 0.5
	FallbackAscent     = 0.8
	FallbackLineHeight = 1.2
)

func fallbackMetrics(size float32) Metrics {
	return Metrics{Ascent: FallbackAscent * size, Descent: (FallbackLineHeight - FallbackAscent) * size}
}

func fallbackAdvance(size float32, s string) float32 {
	n := 0
	for range s {
		n++
	}
	return float32(n) * FallbackAdvance * size
}
