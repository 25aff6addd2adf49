package ibl

import (
	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/gfx"
)

// captureProjection covers exactly one cube face.
var captureProjection = mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 10)

// CaptureFace pairs a cubemap face with the view that renders it.
type CaptureFace struct {
	Face int
	View mgl32.Mat4
}

// CaptureFaces lists the six faces in GL order +X, -X, +Y, -Y, +Z, -Z.
// The up vectors follow the cubemap texel orientation.
var CaptureFaces = [gfx.CubeFaces]CaptureFace{
	{0, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0})},
	{1, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0})},
	{2, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1})},
	{3, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1})},
	{4, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0})},
	{5, mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0})},
}

// MipLevel is one level of the prefiltered chain.
type MipLevel struct {
	Level     int
	Size      int
	Roughness float32
}

// PrefilterLevels returns log2(size)+1 levels with roughness rising
// linearly from 0 at level 0 to 1 at the last level.
func PrefilterLevels(size int) []MipLevel {
	n := gfx.MipCount(size)
	levels := make([]MipLevel, n)
	for i := range levels {
		var r float32
		if n > 1 {
			r = float32(i) / float32(n-1)
		}
		levels[i] = MipLevel{Level: i, Size: gfx.LevelSize(size, i), Roughness: r}
	}
	return levels
}
