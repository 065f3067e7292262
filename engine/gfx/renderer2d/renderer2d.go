// Package renderer2d implements render.Renderer as a quad batcher over a
// core.Device.
package renderer2d

import (
	"embed"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hubastard/arbor/engine/assets"
	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/render"
	"github.com/hubastard/arbor/engine/text"
)

//go:embed shaders/*.glsl
var shaders embed.FS

// Vertex: pos2 + color4 + uv2 => 8 floats
const vStride = 8
const vertsPerQuad = 4
const indsPerQuad = 6

var quadVertexLayout = core.VertexLayout{
	Stride: vStride * 4,
	Attributes: []core.VertexAttrib{
		{Location: 0, Size: 2, Type: core.AttribFloat32, Offset: 0},     // pos
		{Location: 1, Size: 4, Type: core.AttribFloat32, Offset: 2 * 4}, // color
		{Location: 2, Size: 2, Type: core.AttribFloat32, Offset: 6 * 4}, // uv
	},
}

// Statistics captures the counts generated during a renderer frame.
type Statistics struct {
	DrawCalls     int
	QuadCount     int
	Flushes       int
	Dropped       int // commands referencing unknown handles
	DroppedGlyphs int // glyphs that did not fit the atlas
	TextureCount  int
	AtlasSize     int
}

// TotalVertexCount reports vertices submitted this frame.
func (s Statistics) TotalVertexCount() int { return s.QuadCount * vertsPerQuad }

// TotalIndexCount reports indices submitted this frame.
func (s Statistics) TotalIndexCount() int { return s.QuadCount * indsPerQuad }

type Options struct {
	MaxQuads     int
	AtlasSize    int
	AtlasMaxSize int
	ClearColor   colors.Color

	// Shader sources; the embedded quad shaders are used when empty.
	VertexSource   string
	FragmentSource string
}

// OptionsFromConfig picks the renderer limits out of an engine config.
func OptionsFromConfig(cfg core.Config) Options {
	return Options{
		MaxQuads:     cfg.MaxQuads,
		AtlasSize:    cfg.AtlasSize,
		AtlasMaxSize: cfg.AtlasMaxSize,
		ClearColor:   cfg.ClearColor,
	}
}

type imageTex struct {
	tex  core.Texture
	w, h int
}

type resource struct {
	font *text.Font
	img  imageTex
}

// Renderer2D batches draw commands into textured quads. A batch is keyed by
// texture and clip rectangle: it is flushed when the texture changes, on
// every clip push or pop, when it reaches MaxQuads and at Present. Fills and
// text share the glyph atlas texture, so runs of them draw in one call.
type Renderer2D struct {
	dev   core.Device
	pipe  core.Pipeline
	mesh  core.Mesh
	frame render.Frame
	clear colors.Color

	res   *render.Table[resource]
	fonts *text.Library

	atlas     *text.Atlas
	atlasTex  core.Texture
	atlasSize int
	failed    map[text.GlyphKey]struct{}

	clips    render.ClipStack
	batchTex core.Texture

	verts     []float32
	inds      []uint32
	quadCount int
	maxQuads  int

	uniforms map[string]any
	samplers map[string]core.Texture
	stats    Statistics
}

var _ render.Renderer = (*Renderer2D)(nil)

// New creates the renderer and compiles the shader pipeline.
func New(dev core.Device, opts Options) (*Renderer2D, error) {
	if opts.MaxQuads <= 0 {
		opts.MaxQuads = 10000
	}
	vs, fs := opts.VertexSource, opts.FragmentSource
	var err error
	if vs == "" {
		if vs, err = assets.LoadShader(shaders, "shaders/quad.vert.glsl"); err != nil {
			return nil, err
		}
	}
	if fs == "" {
		if fs, err = assets.LoadShader(shaders, "shaders/quad.frag.glsl"); err != nil {
			return nil, err
		}
	}

	pipe, err := dev.CreatePipeline(core.PipelineDesc{
		VertexSource:   vs,
		FragmentSource: fs,
		DepthTest:      false,
		Blend:          true,
	})
	if err != nil {
		return nil, err
	}

	rd := &Renderer2D{
		dev:      dev,
		pipe:     pipe,
		clear:    opts.ClearColor,
		res:      render.NewTable[resource](),
		fonts:    text.NewLibrary(),
		atlas:    text.NewAtlas(opts.AtlasSize, opts.AtlasMaxSize),
		failed:   make(map[text.GlyphKey]struct{}),
		maxQuads: opts.MaxQuads,
		verts:    make([]float32, 0, opts.MaxQuads*vertsPerQuad*vStride),
		inds:     make([]uint32, 0, opts.MaxQuads*indsPerQuad),
		uniforms: make(map[string]any, 1),
		samplers: make(map[string]core.Texture, 1),
	}

	// Create a reusable mesh large enough for the biggest batch.
	rd.mesh, err = dev.CreateMesh(core.MeshDesc{
		Vertices: make([]float32, opts.MaxQuads*vertsPerQuad*vStride),
		Indices:  make([]uint32, opts.MaxQuads*indsPerQuad),
		Layout:   quadVertexLayout,
		Dynamic:  true,
	})
	if err != nil {
		dev.DeletePipeline(pipe)
		return nil, err
	}
	if err := rd.syncAtlas(); err != nil {
		rd.Close()
		return nil, err
	}
	return rd, nil
}

// Close frees every GPU object the renderer owns.
func (rd *Renderer2D) Close() error {
	rd.res.Each(func(_ draw.Handle, v resource) {
		if v.font == nil {
			rd.dev.DeleteTexture(v.img.tex)
		}
	})
	if rd.atlasTex != 0 {
		rd.dev.DeleteTexture(rd.atlasTex)
		rd.atlasTex = 0
	}
	if rd.mesh != 0 {
		rd.dev.DeleteMesh(rd.mesh)
		rd.mesh = 0
	}
	if rd.pipe != 0 {
		rd.dev.DeletePipeline(rd.pipe)
		rd.pipe = 0
	}
	return nil
}

// Stats returns the current frame statistics snapshot.
func (rd *Renderer2D) Stats() Statistics { return rd.stats }

// Atlas exposes the glyph atlas for diagnostics.
func (rd *Renderer2D) Atlas() *text.Atlas { return rd.atlas }

func (rd *Renderer2D) Metrics() render.FontMetrics { return rd.fonts }
func (rd *Renderer2D) State() render.State         { return rd.frame.State() }

func (rd *Renderer2D) BeginFrame(viewport geom.Size) error {
	if err := rd.frame.Begin(viewport); err != nil {
		return err
	}
	rd.stats = Statistics{AtlasSize: rd.atlas.Size(), TextureCount: rd.res.Len() - rd.fonts.Len() + 1}
	rd.clips.Reset()
	rd.resetBatch()

	rd.dev.Viewport(int(viewport.W), int(viewport.H))
	rd.dev.Clear(rd.clear)
	rd.uniforms["uVP"] = mgl32.Ortho2D(0, viewport.W, viewport.H, 0)
	return nil
}

func (rd *Renderer2D) Submit(cmds []draw.Command) error {
	if err := rd.frame.Submit(); err != nil {
		return err
	}
	rd.prepareGlyphs(cmds)

	for _, c := range cmds {
		switch c.Kind {
		case draw.KindFillRect:
			if c.Color.Visible() {
				u, v := rd.atlas.WhiteUV()
				rd.quad(rd.atlasTex, c.Rect, c.Color, u, v, u, v)
			}
		case draw.KindDrawText:
			rd.text(c)
		case draw.KindDrawImage:
			res, ok := rd.res.Get(c.Image.Handle())
			if !ok || res.font != nil {
				rd.drop(c, "unknown image")
				continue
			}
			rd.quad(res.img.tex, c.Rect, c.Color, 0, 0, 1, 1)
		case draw.KindPushClip:
			rd.flush()
			rd.clips.Push(c.Rect)
		case draw.KindPopClip:
			rd.flush()
			if err := rd.clips.Pop(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rd *Renderer2D) Present() error {
	if !rd.frame.InFrame() {
		return rd.frame.Present()
	}
	rd.flush()
	if n := rd.clips.Depth(); n > 0 {
		logging.Logger().Warn("frame presented with open clips", "depth", n)
		rd.clips.Reset()
	}
	rd.stats.AtlasSize = rd.atlas.Size()
	return rd.frame.Present()
}

func (rd *Renderer2D) RegisterFont(data []byte) (draw.FontHandle, error) {
	f, err := text.Parse(data)
	if err != nil {
		return 0, err
	}
	h := draw.FontHandle(rd.res.Issue(resource{font: f}))
	rd.fonts.Add(h, f)
	return h, nil
}

func (rd *Renderer2D) RegisterImage(px render.Pixels) (draw.ImageHandle, error) {
	if err := px.Validate(); err != nil {
		return 0, err
	}
	tex, err := rd.dev.CreateTexture(core.TextureDesc{
		Width: px.W, Height: px.H,
		Format:    core.TextureRGBA8,
		Pixels:    px.RGBA,
		MinFilter: core.FilterLinear, MagFilter: core.FilterLinear,
		WrapU: core.WrapClamp, WrapV: core.WrapClamp,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: image %dx%d: %v", render.ErrResourceExhausted, px.W, px.H, err)
	}
	return draw.ImageHandle(rd.res.Issue(resource{img: imageTex{tex: tex, w: px.W, h: px.H}})), nil
}

// Release frees the texture behind an image handle, or evicts a font's
// glyphs from the atlas. Either way the handle is never issued again.
func (rd *Renderer2D) Release(h draw.Handle) error {
	v, err := rd.res.Release(h)
	if err != nil {
		return err
	}
	// Pending quads may reference the texture or atlas positions.
	rd.flush()

	if v.font == nil {
		rd.dev.DeleteTexture(v.img.tex)
		return nil
	}
	fh := draw.FontHandle(h)
	rd.fonts.Remove(fh)
	rd.atlas.Evict(fh)
	for k := range rd.failed {
		if k.Font == fh {
			delete(rd.failed, k)
		}
	}
	return v.font.Close()
}

// --- internals ---

// prepareGlyphs rasterizes every glyph cmds will need before any of them is
// batched. Inserting can repack the atlas, so the pending batch is drawn
// first while its texture coordinates are still valid.
func (rd *Renderer2D) prepareGlyphs(cmds []draw.Command) {
	flushed := false
	for _, c := range cmds {
		if c.Kind != draw.KindDrawText {
			continue
		}
		f, ok := rd.fonts.Font(c.Font)
		if !ok {
			continue
		}
		face, err := f.Face(c.Size)
		if err != nil {
			continue
		}
		for _, r := range c.Text {
			k := text.GlyphKey{Font: c.Font, Size: c.Size, Rune: r}
			if _, ok := rd.atlas.Lookup(k); ok {
				continue
			}
			if _, ok := rd.failed[k]; ok {
				continue
			}
			if !flushed {
				rd.flush()
				flushed = true
			}
			if _, err := rd.atlas.Insert(k, face); err != nil {
				rd.failed[k] = struct{}{}
				logging.Logger().Warn("dropping glyph",
					"err", fmt.Errorf("%w: %w", render.ErrResourceExhausted, err),
					"font", c.Font, "size", c.Size, "rune", string(r))
			}
		}
	}
}

func (rd *Renderer2D) text(c draw.Command) {
	f, ok := rd.fonts.Font(c.Font)
	if !ok {
		rd.drop(c, "unknown font")
		return
	}
	f.Walk(c.Size, c.Text, c.Origin, func(r rune, pen geom.Point) {
		g, ok := rd.atlas.Lookup(text.GlyphKey{Font: c.Font, Size: c.Size, Rune: r})
		if !ok {
			rd.stats.DroppedGlyphs++
			return
		}
		if g.Empty() {
			return
		}
		x := float32(math.Round(float64(pen.X))) + g.Offset.X
		y := float32(math.Round(float64(pen.Y))) + g.Offset.Y
		u0, v0, u1, v1 := rd.atlas.UV(g)
		rd.quad(rd.atlasTex, geom.R(x, y, float32(g.W), float32(g.H)), c.Color, u0, v0, u1, v1)
	})
}

func (rd *Renderer2D) quad(tex core.Texture, r geom.Rect, color colors.Color, u0, v0, u1, v1 float32) {
	if r.Empty() {
		return
	}
	if clip, ok := rd.clips.Top(); ok && clip.Intersect(r).Empty() {
		return
	}
	if rd.quadCount > 0 && (tex != rd.batchTex || rd.quadCount >= rd.maxQuads) {
		rd.flush()
	}
	rd.batchTex = tex

	// corners (TL, TR, BL, BR) with UVs. Positive Y goes down.
	corners := [4][4]float32{
		{r.X, r.Y, u0, v0},
		{r.X + r.W, r.Y, u1, v0},
		{r.X, r.Y + r.H, u0, v1},
		{r.X + r.W, r.Y + r.H, u1, v1},
	}
	startVertex := uint32(len(rd.verts) / vStride)
	for _, p := range corners {
		rd.verts = append(rd.verts,
			p[0], p[1],
			color[0], color[1], color[2], color[3],
			p[2], p[3],
		)
	}
	rd.inds = append(rd.inds,
		startVertex+0, startVertex+2, startVertex+1,
		startVertex+1, startVertex+2, startVertex+3,
	)
	rd.quadCount++
	rd.stats.QuadCount++
}

func (rd *Renderer2D) flush() {
	if rd.quadCount == 0 {
		return
	}
	rd.frame.Flush(func() {
		tex := rd.batchTex
		if tex == rd.atlasTex {
			if err := rd.syncAtlas(); err != nil {
				logging.Logger().Warn("atlas upload failed", "err", err)
				return
			}
			tex = rd.atlasTex
		}
		if err := rd.dev.UpdateMesh(rd.mesh, rd.verts, rd.inds); err != nil {
			logging.Logger().Warn("dropping batch", "quads", rd.quadCount, "err", err)
			return
		}

		rd.samplers["uTex"] = tex
		clip, clipped := rd.clips.Top()
		rd.dev.Draw(core.DrawCmd{
			Pipe:           rd.pipe,
			Mesh:           rd.mesh,
			IndexCount:     len(rd.inds),
			Uniforms:       rd.uniforms,
			Samplers:       rd.samplers,
			Scissor:        clip,
			ScissorEnabled: clipped,
		})
		rd.stats.DrawCalls++
	})
	rd.stats.Flushes++
	rd.resetBatch()
}

// syncAtlas uploads the atlas if it changed, recreating the texture when
// the atlas was resized.
func (rd *Renderer2D) syncAtlas() error {
	if rd.atlasTex != 0 && !rd.atlas.Dirty() {
		return nil
	}
	size := rd.atlas.Size()
	if rd.atlasTex != 0 && size == rd.atlasSize {
		if err := rd.dev.UpdateTexture(rd.atlasTex, 0, 0, size, size, rd.atlas.RGBA()); err != nil {
			return err
		}
		rd.atlas.MarkClean()
		return nil
	}

	tex, err := rd.dev.CreateTexture(core.TextureDesc{
		Width: size, Height: size,
		Format:    core.TextureRGBA8,
		Pixels:    rd.atlas.RGBA(),
		MinFilter: core.FilterNearest, MagFilter: core.FilterNearest,
		WrapU: core.WrapClamp, WrapV: core.WrapClamp,
	})
	if err != nil {
		return errors.Join(render.ErrResourceExhausted, err)
	}
	if rd.atlasTex != 0 {
		rd.dev.DeleteTexture(rd.atlasTex)
		logging.Logger().Debug("atlas resized", "from", rd.atlasSize, "to", size)
	}
	rd.atlasTex, rd.atlasSize = tex, size
	rd.atlas.MarkClean()
	return nil
}

func (rd *Renderer2D) drop(c draw.Command, reason string) {
	rd.stats.Dropped++
	logging.Logger().Warn("dropping draw command", "cmd", c.String(), "reason", reason)
}

func (rd *Renderer2D) resetBatch() {
	rd.verts = rd.verts[:0]
	rd.inds = rd.inds[:0]
	rd.quadCount = 0
	rd.batchTex = 0
}
