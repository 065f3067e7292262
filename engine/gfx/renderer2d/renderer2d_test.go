package renderer2d

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/render"
)

type fakeDraw struct {
	tex     core.Texture
	quads   int
	scissor geom.Rect
	clipped bool
	verts   []float32
	vp      any
}

// fakeDevice records what the renderer asks of the GPU.
type fakeDevice struct {
	next      uint32
	textures  map[core.Texture]core.TextureDesc
	deleted   map[core.Texture]int
	meshes    int
	pipes     int
	meshVerts []float32
	draws     []fakeDraw
	viewport  [2]int
	clears    []colors.Color
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures: make(map[core.Texture]core.TextureDesc),
		deleted:  make(map[core.Texture]int),
	}
}

func (d *fakeDevice) id() uint32 { d.next++; return d.next }

func (d *fakeDevice) CreatePipeline(core.PipelineDesc) (core.Pipeline, error) {
	d.pipes++
	return core.Pipeline(d.id()), nil
}

func (d *fakeDevice) DeletePipeline(core.Pipeline) { d.pipes-- }

func (d *fakeDevice) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	t := core.Texture(d.id())
	d.textures[t] = desc
	return t, nil
}

func (d *fakeDevice) UpdateTexture(t core.Texture, x, y, w, h int, pixels []byte) error {
	if _, ok := d.textures[t]; !ok {
		return errors.New("update of unknown texture")
	}
	return nil
}

func (d *fakeDevice) DeleteTexture(t core.Texture) {
	d.deleted[t]++
	delete(d.textures, t)
}

func (d *fakeDevice) CreateMesh(core.MeshDesc) (core.Mesh, error) {
	d.meshes++
	return core.Mesh(d.id()), nil
}

func (d *fakeDevice) UpdateMesh(_ core.Mesh, vertices []float32, _ []uint32) error {
	d.meshVerts = append(d.meshVerts[:0], vertices...)
	return nil
}

func (d *fakeDevice) DeleteMesh(core.Mesh)  { d.meshes-- }
func (d *fakeDevice) Viewport(w, h int)     { d.viewport = [2]int{w, h} }
func (d *fakeDevice) Clear(c colors.Color)  { d.clears = append(d.clears, c) }
func (d *fakeDevice) Info() core.DeviceInfo { return core.DeviceInfo{Vendor: "fake"} }

func (d *fakeDevice) Draw(cmd core.DrawCmd) {
	d.draws = append(d.draws, fakeDraw{
		tex:     cmd.Samplers["uTex"],
		quads:   cmd.IndexCount / indsPerQuad,
		scissor: cmd.Scissor,
		clipped: cmd.ScissorEnabled,
		verts:   append([]float32(nil), d.meshVerts...),
		vp:      cmd.Uniforms["uVP"],
	})
}

func newRenderer(t *testing.T, opts Options) (*Renderer2D, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	rd, err := New(dev, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return rd, dev
}

func frame(t *testing.T, rd *Renderer2D, cmds ...draw.Command) {
	t.Helper()
	if err := rd.BeginFrame(geom.Sz(200, 100)); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := rd.Submit(cmds); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := rd.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
}

func TestRenderer2D_FrameProtocol(t *testing.T) {
	rd, _ := newRenderer(t, Options{})

	if err := rd.Submit(nil); !errors.Is(err, render.ErrInvalidRendererState) {
		t.Errorf("Submit before BeginFrame: error = %v", err)
	}
	if err := rd.Present(); !errors.Is(err, render.ErrInvalidRendererState) {
		t.Errorf("Present before BeginFrame: error = %v", err)
	}
	if err := rd.BeginFrame(geom.Sz(10, 10)); err != nil {
		t.Fatal(err)
	}
	if err := rd.BeginFrame(geom.Sz(10, 10)); !errors.Is(err, render.ErrInvalidRendererState) {
		t.Errorf("second BeginFrame: error = %v", err)
	}
	if err := rd.Present(); err != nil {
		t.Fatal(err)
	}
	if got := rd.State(); got != render.FramePresented {
		t.Errorf("State() = %v, want FramePresented", got)
	}
	if err := rd.BeginFrame(geom.Sz(10, 10)); err != nil {
		t.Errorf("BeginFrame after Present: error = %v", err)
	}
}

func TestRenderer2D_Batching(t *testing.T) {
	type batch struct {
		Tex     string
		Quads   int
		Clipped bool
	}

	type tc struct {
		opts Options
		cmds func(font draw.FontHandle, img draw.ImageHandle) []draw.Command
		want []batch
	}

	fill := func(x float32) draw.Command { return draw.FillRect(geom.R(x, 0, 5, 5), colors.Red) }

	tests := map[string]tc{
		"fills and text share the atlas": {
			cmds: func(f draw.FontHandle, _ draw.ImageHandle) []draw.Command {
				return []draw.Command{
					fill(0),
					draw.Text(geom.R(0, 0, 100, 20), geom.Pt(0, 16), "ab", f, 16, colors.White),
					fill(10),
				}
			},
			want: []batch{{Tex: "atlas", Quads: 4}},
		},
		"image breaks the batch": {
			cmds: func(_ draw.FontHandle, img draw.ImageHandle) []draw.Command {
				return []draw.Command{fill(0), draw.Image(geom.R(0, 0, 8, 8), img, colors.White), fill(10)}
			},
			want: []batch{{Tex: "atlas", Quads: 1}, {Tex: "image", Quads: 1}, {Tex: "atlas", Quads: 1}},
		},
		"clip push and pop flush": {
			cmds: func(draw.FontHandle, draw.ImageHandle) []draw.Command {
				return []draw.Command{
					fill(0),
					draw.PushClip(geom.R(0, 0, 50, 50)),
					fill(10), fill(20),
					draw.PopClip(),
					fill(30),
				}
			},
			want: []batch{{Tex: "atlas", Quads: 1}, {Tex: "atlas", Quads: 2, Clipped: true}, {Tex: "atlas", Quads: 1}},
		},
		"quads outside the clip are culled": {
			cmds: func(draw.FontHandle, draw.ImageHandle) []draw.Command {
				return []draw.Command{draw.PushClip(geom.R(100, 0, 10, 10)), fill(0), draw.PopClip()}
			},
			want: []batch{},
		},
		"capacity": {
			opts: Options{MaxQuads: 2},
			cmds: func(draw.FontHandle, draw.ImageHandle) []draw.Command {
				return []draw.Command{fill(0), fill(10), fill(20), fill(30), fill(40)}
			},
			want: []batch{{Tex: "atlas", Quads: 2}, {Tex: "atlas", Quads: 2}, {Tex: "atlas", Quads: 1}},
		},
		"transparent fill": {
			cmds: func(draw.FontHandle, draw.ImageHandle) []draw.Command {
				return []draw.Command{draw.FillRect(geom.R(0, 0, 5, 5), colors.Color{})}
			},
			want: []batch{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rd, dev := newRenderer(t, tt.opts)
			font, err := rd.RegisterFont(goregular.TTF)
			if err != nil {
				t.Fatal(err)
			}
			img, err := rd.RegisterImage(render.Pixels{W: 1, H: 1, RGBA: []byte{255, 255, 255, 255}})
			if err != nil {
				t.Fatal(err)
			}
			imgTex, _ := rd.res.Get(img.Handle())

			frame(t, rd, tt.cmds(font, img)...)

			got := []batch{}
			for _, d := range dev.draws {
				b := batch{Tex: "atlas", Quads: d.quads, Clipped: d.clipped}
				if d.tex == imgTex.img.tex {
					b.Tex = "image"
				}
				got = append(got, b)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("batches mismatch (-want +got):\n%s", diff)
			}
			if s := rd.Stats(); s.DrawCalls != len(tt.want) || s.Dropped != 0 {
				t.Errorf("Stats() = %+v", s)
			}
		})
	}
}

func TestRenderer2D_ClipScissor(t *testing.T) {
	rd, dev := newRenderer(t, Options{})
	frame(t, rd,
		draw.PushClip(geom.R(0, 0, 50, 50)),
		draw.PushClip(geom.R(25, 25, 50, 50)),
		draw.FillRect(geom.R(30, 30, 5, 5), colors.Red),
		draw.PopClip(),
		draw.PopClip(),
	)
	if len(dev.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(dev.draws))
	}
	if got, want := dev.draws[0].scissor, geom.R(25, 25, 25, 25); got != want {
		t.Errorf("scissor = %v, want intersection %v", got, want)
	}
}

func TestRenderer2D_Vertices(t *testing.T) {
	bg := colors.RGB8(1, 2, 3)
	rd, dev := newRenderer(t, Options{ClearColor: bg})
	img, err := rd.RegisterImage(render.Pixels{W: 1, H: 1, RGBA: []byte{255, 255, 255, 255}})
	if err != nil {
		t.Fatal(err)
	}
	tint := colors.Green.WithAlpha(0.5)

	frame(t, rd,
		draw.FillRect(geom.R(10, 20, 30, 40), colors.Red),
		draw.Image(geom.R(1, 2, 3, 4), img, tint),
	)

	if dev.viewport != [2]int{200, 100} {
		t.Errorf("viewport = %v", dev.viewport)
	}
	if len(dev.clears) != 1 || dev.clears[0] != bg {
		t.Errorf("clears = %v, want [%v]", dev.clears, bg)
	}
	if len(dev.draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(dev.draws))
	}
	if vp, ok := dev.draws[0].vp.(mgl32.Mat4); !ok || vp != mgl32.Ortho2D(0, 200, 100, 0) {
		t.Errorf("uVP = %v, want top-left orthographic projection", dev.draws[0].vp)
	}

	u, v := rd.Atlas().WhiteUV()
	fillTL := []float32{10, 20, 1, 0, 0, 1, u, v}
	if diff := cmp.Diff(fillTL, dev.draws[0].verts[:vStride]); diff != "" {
		t.Errorf("fill vertex mismatch (-want +got):\n%s", diff)
	}
	imageBR := []float32{4, 6, tint[0], tint[1], tint[2], tint[3], 1, 1}
	if diff := cmp.Diff(imageBR, dev.draws[1].verts[3*vStride:4*vStride]); diff != "" {
		t.Errorf("image vertex mismatch (-want +got):\n%s", diff)
	}
}

// Two registrations of the same font data are independent resources.
func TestRenderer2D_FontRegistrationsAreIndependent(t *testing.T) {
	rd, dev := newRenderer(t, Options{})
	a, err := rd.RegisterFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	b, err := rd.RegisterFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("RegisterFont returned %v twice", a)
	}

	label := func(f draw.FontHandle) draw.Command {
		return draw.Text(geom.R(0, 0, 100, 20), geom.Pt(0, 16), "Hi", f, 16, colors.White)
	}
	frame(t, rd, label(a), label(b))
	if got := rd.Stats().QuadCount; got != 4 {
		t.Fatalf("QuadCount = %d, want 4", got)
	}

	if err := rd.Release(a.Handle()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := rd.Release(a.Handle()); !errors.Is(err, render.ErrUnknownHandle) {
		t.Errorf("second Release() error = %v, want ErrUnknownHandle", err)
	}

	dev.draws = nil
	frame(t, rd, label(a), label(b))
	s := rd.Stats()
	if s.QuadCount != 2 || s.Dropped != 1 {
		t.Errorf("after release: quads = %d, dropped = %d; want 2 and 1", s.QuadCount, s.Dropped)
	}
	if rd.Metrics().Advance(b, 16, "Hi") <= 0 {
		t.Error("remaining font lost its metrics")
	}
}

func TestRenderer2D_ReleaseImage(t *testing.T) {
	rd, dev := newRenderer(t, Options{})
	img, err := rd.RegisterImage(render.Pixels{W: 2, H: 1, RGBA: make([]byte, 8)})
	if err != nil {
		t.Fatal(err)
	}
	res, _ := rd.res.Get(img.Handle())

	if err := rd.Release(img.Handle()); err != nil {
		t.Fatal(err)
	}
	if err := rd.Release(img.Handle()); !errors.Is(err, render.ErrUnknownHandle) {
		t.Errorf("second Release() error = %v, want ErrUnknownHandle", err)
	}
	if n := dev.deleted[res.img.tex]; n != 1 {
		t.Errorf("texture deleted %d times, want 1", n)
	}

	frame(t, rd, draw.Image(geom.R(0, 0, 2, 1), img, colors.White))
	if s := rd.Stats(); s.Dropped != 1 || s.DrawCalls != 0 {
		t.Errorf("Stats() = %+v, want the stale image dropped", s)
	}

	if _, err := rd.RegisterImage(render.Pixels{W: 2, H: 2, RGBA: make([]byte, 4)}); err == nil {
		t.Error("RegisterImage with short pixel data succeeded")
	}
}

func TestRenderer2D_AtlasGrows(t *testing.T) {
	rd, dev := newRenderer(t, Options{AtlasSize: 64, AtlasMaxSize: 1024})
	first := rd.atlasTex
	font, err := rd.RegisterFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	frame(t, rd, draw.Text(geom.R(0, 0, 200, 40), geom.Pt(0, 32),
		"The quick brown fox jumps over the lazy dog", font, 32, colors.White))

	s := rd.Stats()
	if s.AtlasSize <= 64 {
		t.Errorf("AtlasSize = %d, want growth past 64", s.AtlasSize)
	}
	if s.DroppedGlyphs != 0 {
		t.Errorf("DroppedGlyphs = %d, want 0", s.DroppedGlyphs)
	}
	if dev.deleted[first] != 1 {
		t.Errorf("initial atlas texture deleted %d times, want 1", dev.deleted[first])
	}
	last := dev.draws[len(dev.draws)-1]
	if desc := dev.textures[last.tex]; desc.Width != s.AtlasSize {
		t.Errorf("drawn atlas texture is %d wide, want %d", desc.Width, s.AtlasSize)
	}
}

func TestRenderer2D_AtlasExhaustedDropsGlyphs(t *testing.T) {
	rd, _ := newRenderer(t, Options{AtlasSize: 32, AtlasMaxSize: 32})
	font, err := rd.RegisterFont(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	big := draw.Text(geom.R(0, 0, 200, 60), geom.Pt(0, 48), "MW", font, 48, colors.White)
	fill := draw.FillRect(geom.R(0, 0, 5, 5), colors.Red)

	for i := 0; i < 2; i++ {
		frame(t, rd, big, fill)
		s := rd.Stats()
		if s.DroppedGlyphs != 2 || s.QuadCount != 1 {
			t.Errorf("frame %d: Stats() = %+v, want 2 glyphs dropped and the fill drawn", i, s)
		}
	}
}

func TestRenderer2D_UnknownFontDropped(t *testing.T) {
	rd, dev := newRenderer(t, Options{})
	frame(t, rd, draw.Text(geom.R(0, 0, 10, 10), geom.Pt(0, 8), "x", 99, 16, colors.White))
	if s := rd.Stats(); s.Dropped != 1 || len(dev.draws) != 0 {
		t.Errorf("Stats() = %+v, draws = %d", s, len(dev.draws))
	}
}

func TestRenderer2D_Close(t *testing.T) {
	rd, dev := newRenderer(t, Options{})
	if _, err := rd.RegisterImage(render.Pixels{W: 1, H: 1, RGBA: make([]byte, 4)}); err != nil {
		t.Fatal(err)
	}
	if err := rd.Close(); err != nil {
		t.Fatal(err)
	}
	if len(dev.textures) != 0 || dev.meshes != 0 || dev.pipes != 0 {
		t.Errorf("leaked: %d textures, %d meshes, %d pipelines", len(dev.textures), dev.meshes, dev.pipes)
	}
}
