// Package material binds texture maps and scalar parameters to a shader.
package material

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

// MapKind identifies a material map. The value is also the texture unit the
// map is bound to when drawing.
type MapKind int

const (
	MapAlbedo MapKind = iota
	MapNormal
	MapMetalness
	MapRoughness
	MapOcclusion
	MapEmission
	MapHeight
	MapIrradiance
	MapPrefilter
	MapBRDF

	MapCount
)

var mapNames = [MapCount]string{
	"albedo", "normal", "metalness", "roughness", "occlusion",
	"emission", "height", "irradiance", "prefilter", "brdf",
}

func (k MapKind) String() string {
	if k < 0 || k >= MapCount {
		return fmt.Sprintf("MapKind(%d)", int(k))
	}
	return mapNames[k]
}

// samplerLoc is the shader slot holding the sampler of a map.
func (k MapKind) samplerLoc() gfx.ShaderLoc {
	return gfx.LocMapAlbedo + gfx.ShaderLoc(k)
}

// Map is one material map. Texture is a shared reference.
type Map struct {
	Kind    MapKind
	Texture *gfx.Texture
	Color   core.RGBA8
	Value   float32
}

// Material holds one map per kind and a reference to its shader. Several
// materials may share a shader; uniform writes through any of them are
// visible to all.
type Material struct {
	Shader *gfx.Shader
	Maps   [MapCount]Map
}

// New returns a material with a white albedo that holds a reference to shader.
func New(shader *gfx.Shader) (*Material, error) {
	if shader.Released() {
		return nil, fmt.Errorf("material: shader is nil or released")
	}
	m := &Material{Shader: shader.Retain()}
	for i := range m.Maps {
		m.Maps[i].Kind = MapKind(i)
	}
	m.Maps[MapAlbedo].Color = core.White
	return m, nil
}

// Map returns the map of the given kind.
func (m *Material) Map(kind MapKind) *Map {
	return &m.Maps[kind]
}

// SetTexture retains tex for the map and releases the previous texture.
func (m *Material) SetTexture(kind MapKind, tex *gfx.Texture) {
	mp := &m.Maps[kind]
	if tex != nil {
		tex.Retain()
	}
	mp.Texture.Release()
	mp.Texture = tex
}

// Draw writes the transform and map bindings to the shader and submits mesh.
func (m *Material) Draw(dev gfx.Device, mesh uint32, model, view, proj mgl32.Mat4) error {
	s := m.Shader
	if s.Released() {
		return fmt.Errorf("material: draw with a released shader")
	}
	dev.UseShader(s.ID())
	s.SetLoc(gfx.LocMatrixModel, gfx.Mat4(model))
	s.SetLoc(gfx.LocMatrixMVP, gfx.Mat4(proj.Mul4(view).Mul4(model)))
	s.SetLoc(gfx.LocColorDiffuse, gfx.Vec4(m.Maps[MapAlbedo].Color.Normalize().Vec4()))

	for i := range m.Maps {
		mp := &m.Maps[i]
		if mp.Texture.Released() {
			continue
		}
		dev.BindTexture(i, mp.Texture.ID())
		s.SetLoc(mp.Kind.samplerLoc(), gfx.Int(i))
	}
	dev.DrawMesh(mesh)
	for i := range m.Maps {
		if !m.Maps[i].Texture.Released() {
			dev.BindTexture(i, 0)
		}
	}
	return nil
}

// Unload drops the material's references to its textures and shader.
// Calling it again does nothing.
func (m *Material) Unload() {
	for i := range m.Maps {
		m.Maps[i].Texture.Release()
		m.Maps[i].Texture = nil
	}
	m.Shader.Release()
	m.Shader = nil
}
