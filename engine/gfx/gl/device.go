package glbackend

import (
	"fmt"
	"sort"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/core"
)

type pipeline struct {
	program   uint32
	depthTest bool
	blend     bool
	uniforms  map[string]int32
}

type mesh struct {
	vao, vbo, ebo uint32
	vcap, icap    int // buffer capacities in elements
	usage         uint32
}

// Device implements core.Device on an OpenGL 3.3 core context. All methods
// must be called on the thread owning the context.
type Device struct {
	pipes    map[core.Pipeline]*pipeline
	meshes   map[core.Mesh]*mesh
	tex      map[core.Texture]uint32
	next     uint32
	viewH    int32
	samplers []string
}

var _ core.Device = (*Device)(nil)

// NewDevice expects gl.Init to have been called on a current context.
func NewDevice() *Device {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return &Device{
		pipes:  make(map[core.Pipeline]*pipeline),
		meshes: make(map[core.Mesh]*mesh),
		tex:    make(map[core.Texture]uint32),
	}
}

func (d *Device) id() uint32 { d.next++; return d.next }

func (d *Device) Info() core.DeviceInfo {
	return core.DeviceInfo{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}
}

func (d *Device) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	prog, err := makeProgram(desc.VertexSource, desc.FragmentSource)
	if err != nil {
		return 0, err
	}
	id := core.Pipeline(d.id())
	d.pipes[id] = &pipeline{
		program:   prog,
		depthTest: desc.DepthTest,
		blend:     desc.Blend,
		uniforms:  make(map[string]int32),
	}
	return id, nil
}

func (d *Device) DeletePipeline(p core.Pipeline) {
	if pl, ok := d.pipes[p]; ok {
		gl.DeleteProgram(pl.program)
		delete(d.pipes, p)
	}
}

func (d *Device) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Format != core.TextureRGBA8 {
		return 0, fmt.Errorf("unsupported texture format %d", desc.Format)
	}
	if desc.Pixels != nil && len(desc.Pixels) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("texture %dx%d needs %d bytes, got %d", desc.Width, desc.Height, desc.Width*desc.Height*4, len(desc.Pixels))
	}
	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
	if desc.Width > int(maxSize) || desc.Height > int(maxSize) {
		return 0, fmt.Errorf("texture %dx%d exceeds GL_MAX_TEXTURE_SIZE %d", desc.Width, desc.Height, maxSize)
	}

	var t uint32
	gl.GenTextures(1, &t)
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(desc.WrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(desc.WrapV))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	var ptr unsafe.Pointer
	if len(desc.Pixels) > 0 {
		ptr = gl.Ptr(desc.Pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &t)
		return 0, fmt.Errorf("create texture %dx%d: gl error 0x%x", desc.Width, desc.Height, e)
	}

	id := core.Texture(d.id())
	d.tex[id] = t
	return id, nil
}

func (d *Device) UpdateTexture(t core.Texture, x, y, w, h int, pixels []byte) error {
	name, ok := d.tex[t]
	if !ok {
		return fmt.Errorf("update texture: unknown texture %d", t)
	}
	if len(pixels) != w*h*4 {
		return fmt.Errorf("update texture: %dx%d needs %d bytes, got %d", w, h, w*h*4, len(pixels))
	}
	gl.BindTexture(gl.TEXTURE_2D, name)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (d *Device) DeleteTexture(t core.Texture) {
	if name, ok := d.tex[t]; ok {
		gl.DeleteTextures(1, &name)
		delete(d.tex, t)
	}
}

func (d *Device) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return 0, fmt.Errorf("create mesh: empty vertex or index data")
	}
	m := &mesh{vcap: len(desc.Vertices), icap: len(desc.Indices), usage: gl.STATIC_DRAW}
	if desc.Dynamic {
		m.usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices)*4, gl.Ptr(desc.Vertices), m.usage)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*4, gl.Ptr(desc.Indices), m.usage)

	for _, a := range desc.Layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, glAttribType(a.Type), false, desc.Layout.Stride, uintptr(a.Offset))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	id := core.Mesh(d.id())
	d.meshes[id] = m
	return id, nil
}

func (d *Device) UpdateMesh(id core.Mesh, vertices []float32, indices []uint32) error {
	m, ok := d.meshes[id]
	if !ok {
		return fmt.Errorf("update mesh: unknown mesh %d", id)
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return nil
	}
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > m.vcap {
		m.vcap = len(vertices)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), m.usage)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(indices) > m.icap {
		m.icap = len(indices)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), m.usage)
	} else {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, gl.Ptr(indices))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (d *Device) DeleteMesh(id core.Mesh) {
	m, ok := d.meshes[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
	delete(d.meshes, id)
}

func (d *Device) Viewport(w, h int) {
	d.viewH = int32(h)
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (d *Device) Clear(c colors.Color) {
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Draw(cmd core.DrawCmd) {
	p, ok := d.pipes[cmd.Pipe]
	m, ok2 := d.meshes[cmd.Mesh]
	if !ok || !ok2 || cmd.IndexCount == 0 {
		return
	}

	if p.depthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if p.blend {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	if cmd.ScissorEnabled {
		// GL scissor boxes have a bottom-left origin.
		r := cmd.Scissor
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(r.X), d.viewH-int32(r.Y+r.H), int32(max(r.W, 0)), int32(max(r.H, 0)))
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}

	gl.UseProgram(p.program)
	for name, v := range cmd.Uniforms {
		setUniform(p.uniform(name), v)
	}

	// Texture units are assigned in sorted sampler name order.
	d.samplers = d.samplers[:0]
	for name := range cmd.Samplers {
		d.samplers = append(d.samplers, name)
	}
	sort.Strings(d.samplers)
	for unit, name := range d.samplers {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, d.tex[cmd.Samplers[name]])
		gl.Uniform1i(p.uniform(name), int32(unit))
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, int32(cmd.IndexCount), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Release deletes every object still owned by the device.
func (d *Device) Release() {
	for id := range d.meshes {
		d.DeleteMesh(id)
	}
	for id := range d.tex {
		d.DeleteTexture(id)
	}
	for id := range d.pipes {
		d.DeletePipeline(id)
	}
}

func (p *pipeline) uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

func setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	switch x := v.(type) {
	case float32:
		gl.Uniform1f(loc, x)
	case int32:
		gl.Uniform1i(loc, x)
	case [2]float32:
		gl.Uniform2f(loc, x[0], x[1])
	case [4]float32:
		gl.Uniform4f(loc, x[0], x[1], x[2], x[3])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &x[0])
	}
}

func glFilter(f core.Filter) int32 {
	if f == core.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func glWrap(w core.Wrap) int32 {
	if w == core.WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func glAttribType(core.AttribType) uint32 { return gl.FLOAT }

// --- Shader utilities ---

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
