package light

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/internal/soft"
	"pbr-engine/shaders"
)

func loadFog(t *testing.T, dev *soft.Device) *gfx.Shader {
	t.Helper()
	src, err := shaders.Load("fog")
	if err != nil {
		t.Fatal(err)
	}
	s, err := gfx.LoadShader(dev, src)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRegisterBeyondCapacity(t *testing.T) {
	r := NewRegistry(MaxLights)
	for i := 0; i < MaxLights; i++ {
		id, err := r.Register(Light{Type: Point, Enabled: true})
		if err != nil {
			t.Fatalf("light %d: %v", i, err)
		}
		if id != ID(i) {
			t.Errorf("light %d: expected id %d, got %d", i, i, id)
		}
	}
	_, err := r.Register(Light{Type: Point})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	if r.Len() != MaxLights {
		t.Errorf("expected size %d, got %d", MaxLights, r.Len())
	}
}

func TestPushWritesArraySlot(t *testing.T) {
	dev := soft.New(1, 1)
	s := loadFog(t, dev)
	r := NewRegistry(MaxLights)
	r.Register(Light{Type: Point, Position: mgl32.Vec3{1, 2, 3}, Color: core.White, Enabled: true})
	id, _ := r.Register(Light{Type: Directional, Position: mgl32.Vec3{0, 2, -3.5}, Color: core.Magenta, Enabled: false})

	if err := r.PushAll(s); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want gfx.Value
	}{
		{"lights[0].position", gfx.Vec3{1, 2, 3}},
		{"lights[0].enabled", gfx.Int(1)},
		{"lights[0].type", gfx.Int(Point)},
		{"lights[0].color", gfx.Vec4{1, 1, 1, 1}},
		{"lights[1].position", gfx.Vec3{0, 2, -3.5}},
		{"lights[1].target", gfx.Vec3{0, 0, 0}},
		{"lights[1].enabled", gfx.Int(0)},
		{"lights[1].type", gfx.Int(Directional)},
		{"lights[1].color", gfx.Vec4{1, 0, 1, 1}},
	}
	for _, tt := range tests {
		got, ok := dev.Uniform(s.ID(), tt.name)
		if !ok || got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
	if _, ok := dev.Uniform(s.ID(), "lights[2].enabled"); ok {
		t.Error("lights[2] should not have been written")
	}

	// Mutations only propagate on push.
	r.Light(id).Enabled = true
	if v, _ := dev.Uniform(s.ID(), "lights[1].enabled"); v != gfx.Int(0) {
		t.Errorf("before push: expected 0, got %v", v)
	}
	r.Push(id, s)
	if v, _ := dev.Uniform(s.ID(), "lights[1].enabled"); v != gfx.Int(1) {
		t.Errorf("after push: expected 1, got %v", v)
	}
}

func TestPushToShaderWithoutLights(t *testing.T) {
	dev := soft.New(1, 1)
	src, _ := shaders.Load("brdf")
	s, _ := gfx.LoadShader(dev, src)
	r := NewRegistry(1)
	id, _ := r.Register(Light{Type: Point, Enabled: true})

	if err := r.Push(id, s); err != nil {
		t.Errorf("unresolved light uniforms should be tolerated, got %v", err)
	}
	if n := len(dev.Uniforms(s.ID())); n != 0 {
		t.Errorf("expected no uniform writes, got %d", n)
	}
	if err := r.Push(5, s); err == nil {
		t.Error("expected an error for an unknown id")
	}
}
