package core

import (
	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/geom"
)

// Opaque GPU object ids. Zero is never a valid object.
type (
	Texture  uint32
	Pipeline uint32
	Mesh     uint32
)

type TextureFormat uint8

const (
	TextureRGBA8 TextureFormat = iota
)

type Filter uint8

const (
	FilterLinear Filter = iota
	FilterNearest
)

type Wrap uint8

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

type TextureDesc struct {
	Width, Height int
	Format        TextureFormat
	Pixels        []byte // tightly packed, top-left origin; nil allocates
	MinFilter     Filter
	MagFilter     Filter
	WrapU, WrapV  Wrap
}

type PipelineDesc struct {
	VertexSource   string
	FragmentSource string
	DepthTest      bool
	Blend          bool
}

type AttribType uint8

const (
	AttribFloat32 AttribType = iota
)

type VertexAttrib struct {
	Location uint32
	Size     int32
	Type     AttribType
	Offset   int
}

type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttrib
}

type MeshDesc struct {
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout
	Dynamic  bool
}

// DrawCmd draws IndexCount indices of Mesh with Pipe. Uniform values may be
// float32, int32, [2]float32, [4]float32 or mgl32.Mat4. Samplers bind
// textures to sampler uniforms by name.
type DrawCmd struct {
	Pipe       Pipeline
	Mesh       Mesh
	IndexCount int
	Uniforms   map[string]any
	Samplers   map[string]Texture

	// Scissor is in framebuffer pixels with a top-left origin.
	Scissor        geom.Rect
	ScissorEnabled bool
}

type DeviceInfo struct {
	Vendor   string
	Renderer string
	Version  string
}

// Device is the thin GPU API the 2D renderer is written against.
type Device interface {
	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	DeletePipeline(p Pipeline)

	CreateTexture(desc TextureDesc) (Texture, error)
	UpdateTexture(t Texture, x, y, w, h int, pixels []byte) error
	DeleteTexture(t Texture)

	CreateMesh(desc MeshDesc) (Mesh, error)
	UpdateMesh(m Mesh, vertices []float32, indices []uint32) error
	DeleteMesh(m Mesh)

	Viewport(w, h int)
	Clear(c colors.Color)
	Draw(cmd DrawCmd)

	Info() DeviceInfo
}
