package ibl

import (
	"errors"
	"testing"

	"pbr-engine/gfx"
	"pbr-engine/internal/soft"
	"pbr-engine/shaders"
)

func TestRunnerRestoresState(t *testing.T) {
	dev := soft.New(320, 200)
	src, _ := shaders.Load("brdf")
	s, err := gfx.LoadShader(dev, src)
	if err != nil {
		t.Fatal(err)
	}
	lut, _ := gfx.NewTexture(dev, gfx.TextureDesc{Width: 4, Height: 4, Format: gfx.FormatRG16F}, nil)

	outer, _ := dev.CreateFramebuffer(320, 200)
	dev.BindFramebuffer(outer)
	vp := gfx.Viewport{X: 10, Y: 20, Width: 300, Height: 150}
	dev.SetViewport(vp)
	dev.SetDepthTest(true)

	r := NewRunner(dev)
	passes := []struct {
		name    string
		pass    Pass
		wantErr bool
	}{
		{"ok", Pass{Target: Target{Texture: lut}, Shader: s, Proxy: gfx.ProxyQuad}, false},
		{"bad level", Pass{Target: Target{Texture: lut, Level: 3}, Shader: s, Proxy: gfx.ProxyQuad}, true},
		{"bad face", Pass{Target: Target{Texture: lut, Face: 1}, Shader: s, Proxy: gfx.ProxyQuad}, true},
		{"nil shader", Pass{Target: Target{Texture: lut}, Proxy: gfx.ProxyQuad}, true},
	}
	for _, tt := range passes {
		err := r.Run(tt.pass)
		if tt.wantErr != (err != nil) {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
		if err != nil && !errors.Is(err, ErrPassFailed) {
			t.Errorf("%s: expected ErrPassFailed, got %v", tt.name, err)
		}
		if dev.BoundFramebuffer() != outer {
			t.Errorf("%s: framebuffer not restored", tt.name)
		}
		if dev.Viewport() != vp {
			t.Errorf("%s: expected viewport %v, got %v", tt.name, vp, dev.Viewport())
		}
		if !dev.DepthTest() {
			t.Errorf("%s: depth test not restored", tt.name)
		}
		if dev.FramebufferCount() != 1 {
			t.Errorf("%s: render target leaked, %d framebuffers live", tt.name, dev.FramebufferCount())
		}
	}
}

func TestRunnerRejectsReleasedTarget(t *testing.T) {
	dev := soft.New(1, 1)
	src, _ := shaders.Load("brdf")
	s, _ := gfx.LoadShader(dev, src)
	lut, _ := gfx.NewTexture(dev, gfx.TextureDesc{Width: 4, Height: 4, Format: gfx.FormatRG16F}, nil)
	lut.Release()

	err := NewRunner(dev).Run(Pass{Target: Target{Texture: lut}, Shader: s, Proxy: gfx.ProxyQuad})
	if !errors.Is(err, ErrPassFailed) {
		t.Errorf("expected ErrPassFailed, got %v", err)
	}
	if dev.ProxyDraws() != 0 {
		t.Errorf("expected no draw, got %d", dev.ProxyDraws())
	}
}

func TestCaptureFacesCoverAxes(t *testing.T) {
	axes := [6][3]float32{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for i, cf := range CaptureFaces {
		if cf.Face != i {
			t.Errorf("entry %d: expected face %d, got %d", i, i, cf.Face)
		}
		// The camera looks down -Z in view space; row 2 of the view holds -forward.
		fwd := [3]float32{-cf.View.At(2, 0), -cf.View.At(2, 1), -cf.View.At(2, 2)}
		if fwd != axes[i] {
			t.Errorf("face %d: expected forward %v, got %v", i, axes[i], fwd)
		}
	}
}
