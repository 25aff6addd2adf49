package soft

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

const testFS = `
uniform float a;
uniform float b[2];
uniform int sampleCount;
void main() {}
`

func TestUniformReadback(t *testing.T) {
	d := New(64, 64)
	prog, err := d.CompileShader(gfx.ShaderSource{Name: "x", Vertex: "void main() {}", Fragment: testFS})
	if err != nil {
		t.Fatal(err)
	}
	if loc := d.UniformLocation(prog, "missing"); loc != -1 {
		t.Errorf("missing: expected -1, got %d", loc)
	}
	if d.UniformLocation(prog, "b") != d.UniformLocation(prog, "b[0]") {
		t.Error("b and b[0] should resolve to the same location")
	}

	d.SetUniform(prog, d.UniformLocation(prog, "a"), gfx.Float(2))
	d.SetUniform(prog, -1, gfx.Float(9))
	v, ok := d.Uniform(prog, "a")
	if !ok || v != gfx.Float(2) {
		t.Errorf("a: expected 2, got %v (set=%v)", v, ok)
	}
	if n := len(d.Uniforms(prog)); n != 1 {
		t.Errorf("expected 1 written uniform, got %d", n)
	}
}

func TestCompileRejectsEmptyStage(t *testing.T) {
	d := New(1, 1)
	if _, err := d.CompileShader(gfx.ShaderSource{Name: "x", Fragment: testFS}); err == nil {
		t.Error("expected compile failure for an empty vertex stage")
	}
}

func TestCubeFaceSelection(t *testing.T) {
	tests := []struct {
		dir  mgl32.Vec3
		face int
	}{
		{mgl32.Vec3{1, 0, 0}, 0},
		{mgl32.Vec3{-1, 0, 0}, 1},
		{mgl32.Vec3{0, 1, 0}, 2},
		{mgl32.Vec3{0, -1, 0}, 3},
		{mgl32.Vec3{0, 0, 1}, 4},
		{mgl32.Vec3{0, 0, -1}, 5},
	}
	for _, tt := range tests {
		face, s, tc := cubeFace(tt.dir)
		if face != tt.face || s != 0.5 || tc != 0.5 {
			t.Errorf("cubeFace(%v): expected (%d, 0.5, 0.5), got (%d, %v, %v)", tt.dir, tt.face, face, s, tc)
		}
	}
}

func TestMipmapsAverage(t *testing.T) {
	d := New(1, 1)
	img := &gfx.Image{Width: 2, Height: 2, Format: gfx.FormatRGBA32F, F32: []float32{
		0, 0, 0, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 2, 2, 2, 1,
	}}
	tex, err := d.CreateTexture(gfx.TextureDesc{Width: 2, Height: 2, Format: gfx.FormatRGBA32F, Mips: 2}, img)
	if err != nil {
		t.Fatal(err)
	}
	px, err := d.ReadTexture(tex, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if px[0] != 1 || px[3] != 1 {
		t.Errorf("level 1: expected (1,1,1,1), got %v", px)
	}
}

func TestAttachRejectsMismatchedSize(t *testing.T) {
	d := New(1, 1)
	tex, _ := d.CreateTexture(gfx.TextureDesc{Width: 8, Height: 8, Format: gfx.FormatRGBA16F, Cubemap: true, Mips: 4}, nil)
	fb, _ := d.CreateFramebuffer(8, 8)
	if err := d.AttachColor(fb, tex, 0, 1); err == nil {
		t.Error("expected incomplete framebuffer for a level 1 attachment of a level 0 sized target")
	}
	if err := d.AttachColor(fb, tex, 6, 0); err == nil {
		t.Error("expected error for face 6")
	}
	if err := d.AttachColor(fb, tex, 5, 0); err != nil {
		t.Errorf("face 5: unexpected error %v", err)
	}
}

func TestQuadKernelCoversViewport(t *testing.T) {
	d := New(1, 1)
	d.RegisterKernel("uv", func(env *Env, f Fragment) [4]float32 {
		return [4]float32{f.UV[0], f.UV[1], 0, 1}
	})
	prog, _ := d.CompileShader(gfx.ShaderSource{Name: "uv", Vertex: "void main() {}", Fragment: "void main() {}"})
	tex, _ := d.CreateTexture(gfx.TextureDesc{Width: 4, Height: 4, Format: gfx.FormatRG16F, Mips: 1}, nil)
	fb, _ := d.CreateFramebuffer(4, 4)
	if err := d.AttachColor(fb, tex, 0, 0); err != nil {
		t.Fatal(err)
	}
	d.BindFramebuffer(fb)
	d.SetViewport(gfx.Viewport{Width: 4, Height: 4})
	d.UseShader(prog)
	d.DrawProxy(gfx.ProxyQuad)

	px, _ := d.ReadTexture(tex, 0, 0)
	if len(px) != 4*4*2 {
		t.Fatalf("expected 32 floats, got %d", len(px))
	}
	// Texel (3,0): u = 3.5/4, v = 0.5/4.
	if u, v := px[3*2], px[3*2+1]; math.Abs(float64(u-0.875)) > 1e-6 || math.Abs(float64(v-0.125)) > 1e-6 {
		t.Errorf("texel (3,0): expected (0.875, 0.125), got (%v, %v)", u, v)
	}
}

func TestDrawMeshIsRecorded(t *testing.T) {
	d := New(1, 1)
	mesh, err := d.UploadMesh(&core.MeshData{Vertices: make([]core.Vertex, 3)})
	if err != nil {
		t.Fatal(err)
	}
	d.BindTexture(2, 7)
	d.DrawMesh(mesh)
	calls := d.DrawCalls()
	if len(calls) != 1 || calls[0].Mesh != mesh || calls[0].Textures[2] != 7 {
		t.Errorf("unexpected draw calls %+v", calls)
	}
}

func TestIntegrateBRDFMirrorCorner(t *testing.T) {
	a, b := integrateBRDF(0.999, 0.001, 64)
	if math.Abs(float64(a-1)) > 0.02 || b > 0.02 {
		t.Errorf("expected scale≈1 bias≈0, got %v %v", a, b)
	}
}
