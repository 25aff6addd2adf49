package material

import (
	"fmt"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/ibl"
	"pbr-engine/log"
)

var logger = log.New("material")

// PBRParams are the caller supplied scalars of a PBR material.
type PBRParams struct {
	Albedo    core.RGBA8
	Metalness float32
	Roughness float32
}

// SourceTextures are the standard maps loaded from disk. A nil entry
// leaves the map unsampled.
type SourceTextures struct {
	Albedo    *gfx.Texture
	Normal    *gfx.Texture
	Metalness *gfx.Texture
	Roughness *gfx.Texture
	Occlusion *gfx.Texture
}

// pbrProperty names the uniform struct of each standard map in pbr.fs.
var pbrProperty = map[MapKind]string{
	MapAlbedo:    "albedo",
	MapNormal:    "normals",
	MapMetalness: "metalness",
	MapRoughness: "roughness",
	MapOcclusion: "occlusion",
	MapEmission:  "emission",
	MapHeight:    "height",
}

var standardMaps = []MapKind{MapAlbedo, MapNormal, MapMetalness, MapRoughness, MapOcclusion}

// AssemblePBR builds a drawable PBR material from the shader, the caller's
// parameters, the standard texture maps and a baked environment. The
// material holds its own references; the caller may release the sources
// and the environment afterwards. Uniforms missing from the shader are
// skipped.
func AssemblePBR(shader *gfx.Shader, p PBRParams, src SourceTextures, env *ibl.Environment) (*Material, error) {
	if env == nil || env.Irradiance.Released() || env.Prefilter.Released() || env.BRDF.Released() {
		return nil, fmt.Errorf("material: incomplete environment")
	}
	m, err := New(shader)
	if err != nil {
		return nil, err
	}
	s := m.Shader

	// 1. Locations.
	for kind, prop := range pbrProperty {
		s.Locs[kind.samplerLoc()] = s.Location(prop + ".sampler")
	}
	s.Locs[gfx.LocMapIrradiance] = s.Location("irradianceMap")
	s.Locs[gfx.LocMapPrefilter] = s.Location("prefilterMap")
	s.Locs[gfx.LocMapBRDF] = s.Location("brdfLUT")
	s.Locs[gfx.LocMatrixModel] = s.Location("matModel")
	s.Locs[gfx.LocVectorView] = s.Location("viewPos")
	s.Locs[gfx.LocRenderMode] = s.Location("renderMode")
	for slot := gfx.ShaderLoc(0); slot < gfx.LocCount; slot++ {
		if !s.Locs[slot].Valid() {
			logger.Debugf("shader %q: slot %d unresolved", s.Name(), slot)
		}
	}

	// 2. Standard maps.
	sources := map[MapKind]*gfx.Texture{
		MapAlbedo:    src.Albedo,
		MapNormal:    src.Normal,
		MapMetalness: src.Metalness,
		MapRoughness: src.Roughness,
		MapOcclusion: src.Occlusion,
	}
	for kind, tex := range sources {
		if tex.Released() {
			continue
		}
		m.SetTexture(kind, tex)
		tex.SetFilter(gfx.FilterBilinear)
	}

	// 3. Environment.
	m.SetTexture(MapIrradiance, env.Irradiance)
	m.SetTexture(MapPrefilter, env.Prefilter)
	m.SetTexture(MapBRDF, env.BRDF)
	s.SetNamed("prefilterMaxLod", gfx.Float(env.Prefilter.Mips()-1))

	// 4. Sampling flags.
	for _, kind := range standardMaps {
		use := gfx.Int(0)
		if !m.Maps[kind].Texture.Released() {
			use = 1
		}
		s.SetNamed(pbrProperty[kind]+".useSampler", use)
	}

	// 5. Scalars.
	m.Maps[MapAlbedo].Color = p.Albedo
	m.Maps[MapNormal].Color = core.RGBA8{128, 128, 255, 255}
	m.Maps[MapMetalness].Value = p.Metalness
	m.Maps[MapRoughness].Value = p.Roughness
	m.Maps[MapOcclusion].Value = 1
	m.Maps[MapEmission].Value = 0.5
	m.Maps[MapHeight].Value = 0.5
	albedo := p.Albedo.Normalize()
	normal := m.Maps[MapNormal].Color.Normalize()
	s.SetNamed("albedo.color", gfx.Vec3{albedo.R, albedo.G, albedo.B})
	s.SetNamed("normals.color", gfx.Vec3{normal.R, normal.G, normal.B})
	for _, kind := range []MapKind{MapMetalness, MapRoughness, MapOcclusion, MapEmission, MapHeight} {
		v := m.Maps[kind].Value
		s.SetNamed(pbrProperty[kind]+".color", gfx.Vec3{v, v, v})
	}

	// 6. Shading mode.
	s.SetLoc(gfx.LocRenderMode, gfx.Int(0))

	logger.Infof("assembled PBR material on %q (metalness %.2f, roughness %.2f)", s.Name(), p.Metalness, p.Roughness)
	return m, nil
}
