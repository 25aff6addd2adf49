package gfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
)

// Proxy selects the fixed geometry drawn by an offscreen pass.
type Proxy int

const (
	// ProxyCube is a unit cube viewed from the inside; the vertex stage
	// reads the "projection" and "view" uniforms.
	ProxyCube Proxy = iota
	// ProxyQuad covers the whole viewport with texture coordinates in [0,1].
	ProxyQuad
)

type Viewport struct {
	X, Y, Width, Height int32
}

// ShaderSource is a vertex and fragment program pair. Name identifies the
// program in logs and selects the kernel on devices that do not run GLSL.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// Value is a uniform value.
type Value interface {
	isValue()
}

type (
	Int   int32
	Float float32
	Vec3  mgl32.Vec3
	Vec4  mgl32.Vec4
	Mat4  mgl32.Mat4
)

func (Int) isValue()   {}
func (Float) isValue() {}
func (Vec3) isValue()  {}
func (Vec4) isValue()  {}
func (Mat4) isValue()  {}

// Device is the graphics runtime. All calls happen on the thread that owns
// the context. Handles are plain ids; zero is never a valid id.
type Device interface {
	CreateTexture(desc TextureDesc, img *Image) (uint32, error)
	SetTextureFilter(tex uint32, filter Filter)
	GenerateMipmaps(tex uint32)
	// ReadTexture returns the texels of one face and level as floats,
	// Format.Channels() values per texel.
	ReadTexture(tex uint32, face, level int) ([]float32, error)
	DeleteTexture(tex uint32)

	CompileShader(src ShaderSource) (uint32, error)
	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(prog uint32, name string) int32
	SetUniform(prog uint32, loc int32, v Value)
	DeleteShader(prog uint32)

	CreateFramebuffer(width, height int) (uint32, error)
	AttachColor(fb, tex uint32, face, level int) error
	DeleteFramebuffer(fb uint32)
	BoundFramebuffer() uint32
	BindFramebuffer(fb uint32)
	Viewport() Viewport
	SetViewport(vp Viewport)
	DepthTest() bool
	SetDepthTest(enabled bool)
	Clear(c core.Color)

	UseShader(prog uint32)
	BindTexture(unit int, tex uint32)
	DrawProxy(p Proxy)

	UploadMesh(data *core.MeshData) (uint32, error)
	DrawMesh(mesh uint32)
	DeleteMesh(mesh uint32)
}
