package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear float RGBA color.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Vec4 returns the color as a shader vec4.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// RGBA8 is an 8-bit-per-channel color as stored in material maps and lights.
type RGBA8 struct {
	R, G, B, A uint8
}

var (
	White   = RGBA8{255, 255, 255, 255}
	Red     = RGBA8{230, 41, 55, 255}
	Green   = RGBA8{0, 228, 48, 255}
	Blue    = RGBA8{0, 121, 241, 255}
	Magenta = RGBA8{255, 0, 255, 255}
)

// Normalize maps each channel into [0,1].
func (c RGBA8) Normalize() Color {
	return Color{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// Vertex is the interleaved layout uploaded by the GPU backends.
// Tangent.W carries the bitangent handedness.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec4
}

type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles described by the data.
func (m *MeshData) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}
