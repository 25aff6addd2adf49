package ibl

import (
	"errors"
	"fmt"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

// ErrPassFailed is wrapped by every offscreen pass failure.
var ErrPassFailed = errors.New("offscreen pass failed")

// Target is the surface written by a pass: one face and mip level of a
// cubemap, or a mip level of a 2D texture (Face must be 0).
type Target struct {
	Texture *gfx.Texture
	Face    int
	Level   int
}

// Uniform is a value written before the proxy is drawn.
type Uniform struct {
	Loc   gfx.Location
	Value gfx.Value
}

// Pass describes a single offscreen draw.
type Pass struct {
	Target   Target
	Shader   *gfx.Shader
	Uniforms []Uniform
	// Inputs are bound to texture units 0..n-1 in order.
	Inputs []*gfx.Texture
	Proxy  gfx.Proxy
}

// Runner executes passes against a device. Each Run creates a render target
// for its own target surface and destroys it before returning.
type Runner struct {
	dev gfx.Device
}

func NewRunner(dev gfx.Device) *Runner {
	return &Runner{dev: dev}
}

// Run draws p.Proxy into p.Target. The previously bound framebuffer,
// viewport and depth test state are restored on return, on both the
// success and the error path.
func (r *Runner) Run(p Pass) error {
	if err := p.validate(); err != nil {
		return err
	}
	tex := p.Target.Texture
	size := tex.LevelSize(p.Target.Level)
	height := gfx.LevelSize(tex.Height(), p.Target.Level)

	prevFB := r.dev.BoundFramebuffer()
	prevVP := r.dev.Viewport()
	prevDepth := r.dev.DepthTest()

	fb, err := r.dev.CreateFramebuffer(size, height)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPassFailed, err)
	}
	defer func() {
		r.dev.BindFramebuffer(prevFB)
		r.dev.SetViewport(prevVP)
		r.dev.SetDepthTest(prevDepth)
		r.dev.DeleteFramebuffer(fb)
	}()

	r.dev.BindFramebuffer(fb)
	if err := r.dev.AttachColor(fb, tex.ID(), p.Target.Face, p.Target.Level); err != nil {
		return fmt.Errorf("%w: %s target: %v", ErrPassFailed, p.Shader.Name(), err)
	}
	r.dev.SetViewport(gfx.Viewport{Width: int32(size), Height: int32(height)})
	// The cube proxy is seen from the inside and covers every pixel.
	r.dev.SetDepthTest(false)
	r.dev.Clear(core.ColorBlack)

	r.dev.UseShader(p.Shader.ID())
	for unit, in := range p.Inputs {
		r.dev.BindTexture(unit, in.ID())
	}
	for _, u := range p.Uniforms {
		p.Shader.Set(u.Loc, u.Value)
	}
	r.dev.DrawProxy(p.Proxy)

	for unit := range p.Inputs {
		r.dev.BindTexture(unit, 0)
	}
	return nil
}

func (p *Pass) validate() error {
	if p.Shader.Released() {
		return fmt.Errorf("%w: shader is nil or released", ErrPassFailed)
	}
	t := p.Target
	if t.Texture.Released() {
		return fmt.Errorf("%w: %s: target texture is nil or released", ErrPassFailed, p.Shader.Name())
	}
	if t.Face < 0 || t.Face >= t.Texture.Faces() {
		return fmt.Errorf("%w: %s: face %d out of range", ErrPassFailed, p.Shader.Name(), t.Face)
	}
	if t.Level < 0 || t.Level >= t.Texture.Mips() {
		return fmt.Errorf("%w: %s: level %d out of range (%d mips)", ErrPassFailed, p.Shader.Name(), t.Level, t.Texture.Mips())
	}
	for i, in := range p.Inputs {
		if in.Released() {
			return fmt.Errorf("%w: %s: input %d is nil or released", ErrPassFailed, p.Shader.Name(), i)
		}
	}
	return nil
}
