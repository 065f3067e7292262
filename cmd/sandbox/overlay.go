package main

import (
	"fmt"
	"runtime"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	glbackend "github.com/hubastard/arbor/engine/gfx/gl"
	"github.com/hubastard/arbor/engine/gfx/renderer2d"
	"github.com/hubastard/arbor/engine/profiler"
)

const (
	overlaySize    = 14
	overlayPadding = 10
	sampleEvery    = 30 // ticks
)

type statsSource interface {
	Stats() renderer2d.Statistics
}

// Overlay draws frame, renderer and memory statistics on top of the tree.
type Overlay struct {
	visible bool
	dark    bool

	ticks     int
	frameMS   float64
	lastFrame uint64
	mem       profiler.Memory
	lines     []string
}

func (o *Overlay) update(e *core.Engine, dt float64) {
	o.ticks++
	if o.ticks%sampleEvery != 0 {
		return
	}
	frames := e.Frames() - o.lastFrame
	o.lastFrame = e.Frames()
	if frames > 0 {
		o.frameMS = dt * sampleEvery * 1000 / float64(frames)
	}
	o.mem = profiler.ReadMemory()
}

func (o *Overlay) draw(e *core.Engine, font draw.FontHandle, l *draw.List) {
	if !o.visible {
		return
	}
	o.lines = o.lines[:0]
	o.linef("Frame %d", e.Frames())
	if o.frameMS > 0 {
		o.linef("  %.2f ms (%.0f FPS)", o.frameMS, 1000/o.frameMS)
	}
	if s, ok := e.Renderer.(statsSource); ok {
		st := s.Stats()
		o.linef("2D renderer")
		o.linef("  draw calls %d  flushes %d", st.DrawCalls, st.Flushes)
		o.linef("  quads %d  vertices %d", st.QuadCount, st.TotalVertexCount())
		o.linef("  textures %d  atlas %dpx", st.TextureCount, st.AtlasSize)
		o.linef("  dropped %d  glyphs %d", st.Dropped, st.DroppedGlyphs)
	}
	if r, ok := e.Renderer.(*glbackend.Renderer); ok {
		info := r.Device().Info()
		o.linef("GPU %s", info.Renderer)
		o.linef("  %s", info.Version)
	}
	o.linef("Memory %.2f MB  allocs %d  gc %d", float64(o.mem.Alloc)/(1<<20), o.mem.Mallocs, o.mem.NumGC)
	o.linef("Goroutines %d  CPUs %d", o.mem.Goroutines, runtime.NumCPU())

	m := e.Renderer.Metrics()
	lh := m.LineHeight(font, overlaySize)
	ascent := m.Ascent(font, overlaySize)
	var w float32
	for _, s := range o.lines {
		w = max(w, m.Advance(font, overlaySize, s))
	}
	fbw, _ := e.Window.FramebufferSize()
	box := geom.R(float32(fbw)-w-3*overlayPadding, overlayPadding, w+2*overlayPadding, lh*float32(len(o.lines))+2*overlayPadding)

	bg, fg := colors.Black.WithAlpha(0.6), colors.Yellow
	if !o.dark {
		bg, fg = colors.White.WithAlpha(0.8), colors.Black
	}
	l.PushClip(box)
	l.FillRect(box, bg)
	y := box.Y + overlayPadding
	for _, s := range o.lines {
		line := geom.R(box.X+overlayPadding, y, w, lh)
		l.Text(line, geom.Pt(line.X, y+ascent), s, font, overlaySize, fg)
		y += lh
	}
	l.PopClip()
}

func (o *Overlay) linef(format string, args ...any) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}
