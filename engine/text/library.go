package text

import "github.com/hubastard/arbor/engine/draw"

// Library resolves font handles to parsed fonts and answers metric queries
// for them. Unknown handles measure with the Fallback* approximations.
type Library struct {
	fonts map[draw.FontHandle]*Font
}

func NewLibrary() *Library {
	return &Library{fonts: make(map[draw.FontHandle]*Font)}
}

func (l *Library) Add(h draw.FontHandle, f *Font) { l.fonts[h] = f }

// Remove forgets h and returns the font it referred to.
func (l *Library) Remove(h draw.FontHandle) (*Font, bool) {
	f, ok := l.fonts[h]
	delete(l.fonts, h)
	return f, ok
}

func (l *Library) Font(h draw.FontHandle) (*Font, bool) {
	f, ok := l.fonts[h]
	return f, ok
}

func (l *Library) Len() int { return len(l.fonts) }

func (l *Library) Advance(h draw.FontHandle, size float32, s string) float32 {
	if f, ok := l.fonts[h]; ok {
		return f.Measure(size, s)
	}
	return fallbackAdvance(size, s)
}

func (l *Library) Ascent(h draw.FontHandle, size float32) float32 {
	if f, ok := l.fonts[h]; ok {
		return f.Metrics(size).Ascent
	}
	return fallbackMetrics(size).Ascent
}

func (l *Library) LineHeight(h draw.FontHandle, size float32) float32 {
	if f, ok := l.fonts[h]; ok {
		return f.Metrics(size).LineHeight()
	}
	return fallbackMetrics(size).LineHeight()
}
