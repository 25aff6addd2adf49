package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/internal/soft"
)

func checkTangents(t *testing.T, m *Mesh) {
	t.Helper()
	for i, v := range m.Data.Vertices {
		tan := v.Tangent.Vec3()
		if d := tan.Len(); d < 0.99 || d > 1.01 {
			t.Fatalf("%s vertex %d: expected unit tangent, got length %v", m.Name, i, d)
		}
		if d := tan.Dot(v.Normal); d > 1e-3 || d < -1e-3 {
			t.Fatalf("%s vertex %d: tangent not orthogonal to normal (dot %v)", m.Name, i, d)
		}
		if v.Tangent[3] != 1 && v.Tangent[3] != -1 {
			t.Fatalf("%s vertex %d: expected handedness ±1, got %v", m.Name, i, v.Tangent[3])
		}
	}
}

func TestCreateCube(t *testing.T) {
	m := CreateCube(2, 2, 2)
	if len(m.Data.Vertices) != 24 {
		t.Errorf("Vertices: expected 24, got %d", len(m.Data.Vertices))
	}
	if m.Data.TriangleCount() != 12 {
		t.Errorf("Triangles: expected 12, got %d", m.Data.TriangleCount())
	}
	for _, v := range m.Data.Vertices {
		for k := 0; k < 3; k++ {
			if v.Position[k] != 1 && v.Position[k] != -1 {
				t.Fatalf("Position %v: expected corners at ±1", v.Position)
			}
		}
	}
	// Every face winds counter-clockwise around its outward normal.
	idx := m.Data.Indices
	for i := 0; i < len(idx); i += 3 {
		a, b, c := m.Data.Vertices[idx[i]], m.Data.Vertices[idx[i+1]], m.Data.Vertices[idx[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if n.Dot(a.Normal) <= 0 {
			t.Fatalf("triangle %d: winding disagrees with normal %v", i/3, a.Normal)
		}
	}
	checkTangents(t, m)
}

func TestCreateSphere(t *testing.T) {
	m := CreateSphere(0.5, 32, 32)
	if got, want := len(m.Data.Vertices), 33*33; got != want {
		t.Errorf("Vertices: expected %d, got %d", want, got)
	}
	if got, want := m.Data.TriangleCount(), 32*32*2; got != want {
		t.Errorf("Triangles: expected %d, got %d", want, got)
	}
	for _, v := range m.Data.Vertices {
		if d := v.Position.Len(); d < 0.499 || d > 0.501 {
			t.Fatalf("Position %v: expected radius 0.5, got %v", v.Position, d)
		}
	}
	checkTangents(t, m)
}

func TestCreateTorus(t *testing.T) {
	m := CreateTorus(0.4, 1.0, 16, 32)
	var maxR, maxY float32
	for _, v := range m.Data.Vertices {
		r := mgl32.Vec2{v.Position[0], v.Position[2]}.Len()
		if r > maxR {
			maxR = r
		}
		if v.Position[1] > maxY {
			maxY = v.Position[1]
		}
	}
	// Ring radius 0.5, tube radius 0.2.
	if maxR < 0.69 || maxR > 0.71 {
		t.Errorf("outer radius: expected 0.7, got %v", maxR)
	}
	if maxY < 0.19 || maxY > 0.21 {
		t.Errorf("tube radius: expected 0.2, got %v", maxY)
	}
	checkTangents(t, m)
}

func TestComputeTangentsFollowsU(t *testing.T) {
	m := CreatePlane(2, 2, 1)
	for _, v := range m.Data.Vertices {
		if v.Tangent.Vec3().Sub(mgl32.Vec3{1, 0, 0}).Len() > 1e-4 {
			t.Errorf("Tangent: expected +X, got %v", v.Tangent)
		}
	}
}

func TestMeshUploadRelease(t *testing.T) {
	dev := soft.New(4, 4)
	m := CreateCube(1, 1, 1)
	if err := m.Upload(dev); err != nil {
		t.Fatal(err)
	}
	id := m.GPU
	if id == 0 {
		t.Fatal("expected a mesh id after upload")
	}
	if err := m.Upload(dev); err != nil || m.GPU != id {
		t.Errorf("second Upload: expected no-op, got id %d err %v", m.GPU, err)
	}
	m.Release(dev)
	if m.GPU != 0 {
		t.Errorf("GPU: expected 0 after release, got %d", m.GPU)
	}

	empty := NewMesh("empty", nil, nil)
	if err := empty.Upload(dev); err == nil {
		t.Error("expected error uploading a mesh with no vertices")
	}
}

func TestOrbitCameraPlacement(t *testing.T) {
	pos := mgl32.Vec3{4, 4, 4}
	target := mgl32.Vec3{0, 0.5, 0}
	c := NewOrbitCamera(pos, target, 45, 16.0/9.0)
	if got := c.Position(); got.Sub(pos).Len() > 1e-4 {
		t.Errorf("Position: expected %v, got %v", pos, got)
	}
	// Target projects to the view center.
	p := c.View().Mul4x1(target.Vec4(1))
	if p[0] > 1e-4 || p[0] < -1e-4 || p[1] > 1e-4 || p[1] < -1e-4 {
		t.Errorf("target in view space: expected on -Z axis, got %v", p)
	}

	before := c.Position()
	c.Update(1)
	after := c.Position()
	if after.Sub(before).Len() < 1e-3 {
		t.Error("Update: expected camera to move")
	}
	if d := after.Sub(target).Len(); d < c.Distance-1e-3 || d > c.Distance+1e-3 {
		t.Errorf("Update: expected distance %v, got %v", c.Distance, d)
	}
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	src.Set(1, 0, color.NRGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeImage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 2 || img.Height != 1 || img.Format != gfx.FormatRGBA8 {
		t.Fatalf("image: expected 2x1 RGBA8, got %dx%d %s", img.Width, img.Height, img.Format)
	}
	want := []uint8{255, 0, 0, 255, 0, 0, 255, 255}
	for i := range want {
		if img.U8[i] != want[i] {
			t.Errorf("U8[%d]: expected %d, got %d", i, want[i], img.U8[i])
		}
	}

	if _, err := DecodeHDR(bytes.NewReader(buf.Bytes())); err == nil {
		t.Error("DecodeHDR: expected error for an LDR image")
	}
}

func TestLoadTextureFallback(t *testing.T) {
	dev := soft.New(4, 4)
	missing := filepath.Join(t.TempDir(), "missing.png")

	if _, err := LoadTexture(dev, missing); !errors.Is(err, gfx.ErrResourceLoad) {
		t.Errorf("LoadTexture: expected ErrResourceLoad, got %v", err)
	}
	tex, err := LoadTextureOr(dev, missing, core.RGBA8{R: 128, G: 128, B: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Release()
	px, err := tex.Read(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if px[2] != 1 || px[0] < 0.5 || px[0] > 0.51 {
		t.Errorf("fallback pixel: expected (0.502, 0.502, 1), got %v", px[:4])
	}
}

func TestCheckerImage(t *testing.T) {
	a, b := core.RGBA8{R: 255, A: 255}, core.RGBA8{B: 255, A: 255}
	img := CheckerImage(4, 2, a, b)
	if err := img.Validate(); err != nil {
		t.Fatal(err)
	}
	at := func(x, y int) uint8 { return img.U8[(y*4+x)*4] }
	if at(0, 0) != 255 || at(2, 0) != 0 || at(2, 2) != 255 {
		t.Errorf("checker cells: got %d %d %d", at(0, 0), at(2, 0), at(2, 2))
	}
}

const quadOBJ = `# unit quad
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 4/4 3/3 2/2
`

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Data.Vertices) != 4 {
		t.Errorf("Vertices: expected 4, got %d", len(m.Data.Vertices))
	}
	if m.Data.TriangleCount() != 2 {
		t.Errorf("Triangles: expected 2, got %d", m.Data.TriangleCount())
	}
	// No vn lines: normals are generated from the winding.
	for _, v := range m.Data.Vertices {
		if v.Normal.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
			t.Errorf("Normal: expected +Y, got %v", v.Normal)
		}
	}
	checkTangents(t, m)

	if _, err := ParseOBJ(strings.NewReader("v 0 0 0\n")); err == nil {
		t.Error("expected error for OBJ without faces")
	}
}

func TestParseFaceVertex(t *testing.T) {
	tests := []struct {
		tok  string
		want [3]int
	}{
		{"3", [3]int{2, -1, -1}},
		{"3/2", [3]int{2, 1, -1}},
		{"3//5", [3]int{2, -1, 4}},
		{"3/2/5", [3]int{2, 1, 4}},
		{"-1/-1/-1", [3]int{9, 7, 5}},
	}
	for _, tt := range tests {
		if got := parseFaceVertex(tt.tok, 10, 8, 6); got != tt.want {
			t.Errorf("parseFaceVertex(%q): expected %v, got %v", tt.tok, tt.want, got)
		}
	}
}

func TestLoadModelRejectsUnknownFormat(t *testing.T) {
	if _, err := LoadModel("model.fbx"); !errors.Is(err, gfx.ErrResourceLoad) {
		t.Errorf("expected ErrResourceLoad, got %v", err)
	}
}
