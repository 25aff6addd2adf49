package material

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/ibl"
	"pbr-engine/internal/soft"
	"pbr-engine/shaders"
)

func loadShader(t *testing.T, dev gfx.Device, name string) *gfx.Shader {
	t.Helper()
	src, err := shaders.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	s, err := gfx.LoadShader(dev, src)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func solidTexture(t *testing.T, dev gfx.Device, c core.RGBA8) *gfx.Texture {
	t.Helper()
	img := &gfx.Image{Width: 1, Height: 1, Format: gfx.FormatRGBA8, U8: []uint8{c.R, c.G, c.B, c.A}}
	tex, err := gfx.NewTexture(dev, gfx.TextureDesc{Width: 1, Height: 1, Format: gfx.FormatRGBA8}, img)
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func bakeEnvironment(t *testing.T, dev gfx.Device) *ibl.Environment {
	t.Helper()
	b, err := ibl.NewBaker(dev, ibl.Options{
		CubemapSize: 4, IrradianceSize: 2, PrefilterSize: 4, BRDFSize: 4,
		IrradianceSampleDelta: 0.5, PrefilterSamples: 4, BRDFSamples: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	img := &gfx.Image{Width: 4, Height: 2, Format: gfx.FormatRGB32F, F32: make([]float32, 4*2*3)}
	pano, err := gfx.NewTexture(dev, gfx.TextureDesc{Width: 4, Height: 2, Format: gfx.FormatRGB32F}, img)
	if err != nil {
		t.Fatal(err)
	}
	defer pano.Release()
	env, err := b.Bake(pano)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func sourceTextures(t *testing.T, dev gfx.Device) SourceTextures {
	return SourceTextures{
		Albedo:    solidTexture(t, dev, core.White),
		Normal:    solidTexture(t, dev, core.RGBA8{128, 128, 255, 255}),
		Metalness: solidTexture(t, dev, core.White),
		Roughness: solidTexture(t, dev, core.White),
		Occlusion: solidTexture(t, dev, core.White),
	}
}

func (s SourceTextures) release() {
	for _, tex := range []*gfx.Texture{s.Albedo, s.Normal, s.Metalness, s.Roughness, s.Occlusion} {
		tex.Release()
	}
}

func TestAssemblePBR(t *testing.T) {
	dev := soft.New(1, 1)
	shader := loadShader(t, dev, "pbr")
	env := bakeEnvironment(t, dev)
	src := sourceTextures(t, dev)

	m, err := AssemblePBR(shader, PBRParams{Albedo: core.White, Metalness: 1, Roughness: 1}, src, env)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"albedo", "normals", "metalness", "roughness", "occlusion"} {
		v, ok := dev.Uniform(shader.ID(), name+".useSampler")
		if !ok || v != gfx.Int(1) {
			t.Errorf("%s.useSampler: expected 1, got %v", name, v)
		}
	}
	if v, ok := dev.Uniform(shader.ID(), "renderMode"); !ok || v != gfx.Int(0) {
		t.Errorf("renderMode: expected 0, got %v", v)
	}
	if v, _ := dev.Uniform(shader.ID(), "prefilterMaxLod"); v != gfx.Float(2) {
		t.Errorf("prefilterMaxLod: expected 2, got %v", v)
	}

	scalars := map[MapKind]float32{
		MapMetalness: 1, MapRoughness: 1, MapOcclusion: 1, MapEmission: 0.5, MapHeight: 0.5,
	}
	for kind, want := range scalars {
		if got := m.Map(kind).Value; got != want {
			t.Errorf("%s value: expected %v, got %v", kind, want, got)
		}
	}
	if c := m.Map(MapNormal).Color; c != (core.RGBA8{128, 128, 255, 255}) {
		t.Errorf("normal color: expected (128,128,255,255), got %v", c)
	}
	if m.Map(MapIrradiance).Texture != env.Irradiance || m.Map(MapBRDF).Texture != env.BRDF {
		t.Error("environment textures not bound to their map slots")
	}
	if m.Map(MapEmission).Texture != nil {
		t.Error("emission should have no texture")
	}
	if f := dev.TextureFilter(src.Albedo.ID()); f != gfx.FilterBilinear {
		t.Errorf("albedo filter: expected bilinear, got %v", f)
	}

	// The material is immediately drawable.
	mesh, _ := dev.UploadMesh(&core.MeshData{Vertices: make([]core.Vertex, 3)})
	if err := m.Draw(dev, mesh, mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4()); err != nil {
		t.Fatal(err)
	}
	calls := dev.DrawCalls()
	if len(calls) != 1 || len(calls[0].Textures) != 8 {
		t.Errorf("expected one draw with 8 bound maps, got %+v", calls)
	}
	if v, _ := dev.Uniform(shader.ID(), "prefilterMap"); v != gfx.Int(MapPrefilter) {
		t.Errorf("prefilterMap: expected unit %d, got %v", MapPrefilter, v)
	}
}

func TestAssembleWithoutOptionalMaps(t *testing.T) {
	dev := soft.New(1, 1)
	shader := loadShader(t, dev, "pbr")
	env := bakeEnvironment(t, dev)

	_, err := AssemblePBR(shader, PBRParams{Albedo: core.White, Metalness: 0.2, Roughness: 0.7},
		SourceTextures{Albedo: solidTexture(t, dev, core.White)}, env)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := dev.Uniform(shader.ID(), "albedo.useSampler"); v != gfx.Int(1) {
		t.Errorf("albedo.useSampler: expected 1, got %v", v)
	}
	if v, _ := dev.Uniform(shader.ID(), "normals.useSampler"); v != gfx.Int(0) {
		t.Errorf("normals.useSampler: expected 0, got %v", v)
	}
	if v, _ := dev.Uniform(shader.ID(), "roughness.color"); v != (gfx.Vec3{0.7, 0.7, 0.7}) {
		t.Errorf("roughness.color: expected 0.7, got %v", v)
	}

	if _, err := AssemblePBR(shader, PBRParams{}, SourceTextures{}, nil); err == nil {
		t.Error("expected an error without an environment")
	}
}

func TestUnresolvedWriteIsNoop(t *testing.T) {
	dev := soft.New(1, 1)
	shader := loadShader(t, dev, "pbr")
	shader.SetNamed("viewPos", gfx.Vec3{1, 2, 3})
	shader.SetNamed("renderMode", gfx.Int(4))
	before := dev.Uniforms(shader.ID())

	loc := shader.Location("no.such.uniform")
	if loc.Valid() || loc.Index() != -1 {
		t.Fatalf("expected an invalid location, got %v", loc)
	}
	shader.Set(loc, gfx.Int(7))
	shader.Set(gfx.NoLocation, gfx.Float(1))
	shader.SetNamed("emissive", gfx.Float(1))

	if after := dev.Uniforms(shader.ID()); !reflect.DeepEqual(before, after) {
		t.Errorf("uniforms changed: before %v, after %v", before, after)
	}
}

func TestSharedShaderAndTextureRelease(t *testing.T) {
	dev := soft.New(1, 1)
	shader := loadShader(t, dev, "fog")
	checker := solidTexture(t, dev, core.White)

	var models []*Material
	for i := 0; i < 3; i++ {
		m, err := New(shader)
		if err != nil {
			t.Fatal(err)
		}
		m.SetTexture(MapAlbedo, checker)
		models = append(models, m)
	}
	// The loader's references.
	shader.Release()
	checker.Release()

	for i, m := range models {
		if dev.ShaderCount() != 1 || dev.TextureCount() != 1 {
			t.Fatalf("after %d unloads: expected shader and texture alive", i)
		}
		m.Unload()
		m.Unload()
	}
	if dev.ShaderCount() != 0 || dev.TextureCount() != 0 {
		t.Errorf("expected everything released, got %d shaders and %d textures", dev.ShaderCount(), dev.TextureCount())
	}
}

func TestSetTextureReplaces(t *testing.T) {
	dev := soft.New(1, 1)
	m, _ := New(loadShader(t, dev, "fog"))
	a := solidTexture(t, dev, core.White)
	b := solidTexture(t, dev, core.Red)
	m.SetTexture(MapAlbedo, a)
	a.Release()
	m.SetTexture(MapAlbedo, b)
	if !a.Released() {
		t.Error("replaced texture should be released")
	}
	if b.Released() {
		t.Error("new texture should be alive")
	}
}
