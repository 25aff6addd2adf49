// Package ibl bakes an equirectangular HDR panorama into the textures used
// for image based lighting: an environment cubemap, a diffuse irradiance
// cubemap, a prefiltered specular cubemap with a roughness mip chain and a
// split-sum BRDF lookup table.
package ibl

import (
	"fmt"
	"time"

	"pbr-engine/gfx"
	"pbr-engine/log"
	"pbr-engine/shaders"
)

var logger = log.New("ibl")

const (
	DefaultCubemapSize    = 512
	DefaultIrradianceSize = 32
	DefaultPrefilterSize  = 256
	DefaultBRDFSize       = 512
)

// Options configures resolutions and sample counts of a bake.
type Options struct {
	CubemapSize    int
	IrradianceSize int
	PrefilterSize  int
	BRDFSize       int

	// IrradianceSampleDelta is the hemisphere step in radians.
	IrradianceSampleDelta float32
	PrefilterSamples      int
	BRDFSamples           int
}

func DefaultOptions() Options {
	return Options{
		CubemapSize:           DefaultCubemapSize,
		IrradianceSize:        DefaultIrradianceSize,
		PrefilterSize:         DefaultPrefilterSize,
		BRDFSize:              DefaultBRDFSize,
		IrradianceSampleDelta: 0.025,
		PrefilterSamples:      1024,
		BRDFSamples:           1024,
	}
}

func (o Options) validate() error {
	for name, v := range map[string]int{
		"cubemap":    o.CubemapSize,
		"irradiance": o.IrradianceSize,
		"prefilter":  o.PrefilterSize,
		"brdf":       o.BRDFSize,
	} {
		if v <= 0 {
			return fmt.Errorf("invalid %s size %d", name, v)
		}
	}
	if o.IrradianceSampleDelta <= 0 || o.PrefilterSamples <= 0 || o.BRDFSamples <= 0 {
		return fmt.Errorf("sample counts must be positive")
	}
	return nil
}

// Environment is the set of baked textures consumed by a PBR material.
type Environment struct {
	Irradiance *gfx.Texture
	Prefilter  *gfx.Texture
	BRDF       *gfx.Texture
}

// Release drops the bake's reference to each texture.
func (e *Environment) Release() {
	if e == nil {
		return
	}
	e.Irradiance.Release()
	e.Prefilter.Release()
	e.BRDF.Release()
}

// PassStat records the cost of one bake stage.
type PassStat struct {
	Name     string
	Size     int
	Format   gfx.PixelFormat
	Mips     int
	Passes   int
	Duration time.Duration
}

// Baker owns the four bake programs.
type Baker struct {
	dev    gfx.Device
	runner *Runner
	opts   Options

	cubemap    *gfx.Shader
	irradiance *gfx.Shader
	prefilter  *gfx.Shader
	brdf       *gfx.Shader

	stats []PassStat
}

// NewBaker compiles the bake programs. Any compile failure is fatal.
func NewBaker(dev gfx.Device, opts Options) (*Baker, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	b := &Baker{dev: dev, runner: NewRunner(dev), opts: opts}
	for _, p := range []struct {
		name string
		dst  **gfx.Shader
	}{
		{"cubemap", &b.cubemap},
		{"irradiance", &b.irradiance},
		{"prefilter", &b.prefilter},
		{"brdf", &b.brdf},
	} {
		src, err := shaders.Load(p.name)
		if err != nil {
			b.Close()
			return nil, err
		}
		s, err := gfx.LoadShader(dev, src)
		if err != nil {
			b.Close()
			return nil, err
		}
		*p.dst = s
	}
	return b, nil
}

// Close releases the bake programs.
func (b *Baker) Close() {
	b.cubemap.Release()
	b.irradiance.Release()
	b.prefilter.Release()
	b.brdf.Release()
}

// Stats returns one entry per stage run since the baker was created.
func (b *Baker) Stats() []PassStat {
	return b.stats
}

func (b *Baker) record(name string, t *gfx.Texture, passes int, start time.Time) {
	d := time.Since(start)
	b.stats = append(b.stats, PassStat{
		Name: name, Size: t.Width(), Format: t.Format(), Mips: t.Mips(), Passes: passes, Duration: d,
	})
	logger.Debugf("%s: %dx%d %s, %d mips, %d passes in %s", name, t.Width(), t.Height(), t.Format(), t.Mips(), passes, d)
}

// renderFaces runs one pass per cube face of level into dst.
func (b *Baker) renderFaces(dst *gfx.Texture, level int, s *gfx.Shader, input *gfx.Texture, extra []Uniform) error {
	projection := s.Location("projection")
	view := s.Location("view")
	for _, cf := range CaptureFaces {
		uniforms := append([]Uniform{
			{projection, gfx.Mat4(captureProjection)},
			{view, gfx.Mat4(cf.View)},
		}, extra...)
		err := b.runner.Run(Pass{
			Target:   Target{Texture: dst, Face: cf.Face, Level: level},
			Shader:   s,
			Uniforms: uniforms,
			Inputs:   []*gfx.Texture{input},
			Proxy:    gfx.ProxyCube,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Baker) newCubemap(size, mips int) (*gfx.Texture, error) {
	t, err := gfx.NewTexture(b.dev, gfx.TextureDesc{
		Width: size, Height: size, Format: gfx.FormatRGBA16F, Cubemap: true, Mips: mips,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPassFailed, err)
	}
	return t, nil
}

// EquirectToCubemap projects an equirectangular panorama onto the six faces
// of a size x size cubemap. The cubemap carries a full mip chain generated
// from the rendered faces.
func (b *Baker) EquirectToCubemap(equirect *gfx.Texture, size int) (*gfx.Texture, error) {
	if equirect.Released() || equirect.IsCubemap() {
		return nil, fmt.Errorf("%w: equirectangular input must be a live 2D texture", ErrPassFailed)
	}
	start := time.Now()
	cube, err := b.newCubemap(size, gfx.MipCount(size))
	if err != nil {
		return nil, err
	}
	equirect.SetFilter(gfx.FilterBilinear)
	extra := []Uniform{{b.cubemap.Location("equirectangularMap"), gfx.Int(0)}}
	if err := b.renderFaces(cube, 0, b.cubemap, equirect, extra); err != nil {
		cube.Release()
		return nil, err
	}
	cube.GenerateMipmaps()
	cube.SetFilter(gfx.FilterTrilinear)
	b.record("cubemap", cube, gfx.CubeFaces, start)
	return cube, nil
}

// Irradiance convolves cubemap over the hemisphere of every direction.
func (b *Baker) Irradiance(cubemap *gfx.Texture, size int) (*gfx.Texture, error) {
	if cubemap.Released() || !cubemap.IsCubemap() {
		return nil, fmt.Errorf("%w: irradiance input must be a live cubemap", ErrPassFailed)
	}
	start := time.Now()
	irr, err := b.newCubemap(size, 1)
	if err != nil {
		return nil, err
	}
	extra := []Uniform{
		{b.irradiance.Location("environmentMap"), gfx.Int(0)},
		{b.irradiance.Location("sampleDelta"), gfx.Float(b.opts.IrradianceSampleDelta)},
	}
	if err := b.renderFaces(irr, 0, b.irradiance, cubemap, extra); err != nil {
		irr.Release()
		return nil, err
	}
	irr.SetFilter(gfx.FilterBilinear)
	b.record("irradiance", irr, gfx.CubeFaces, start)
	return irr, nil
}

// Prefilter renders log2(size)+1 mip levels, each one convolved with a GGX
// lobe of increasing roughness.
func (b *Baker) Prefilter(cubemap *gfx.Texture, size int) (*gfx.Texture, error) {
	if cubemap.Released() || !cubemap.IsCubemap() {
		return nil, fmt.Errorf("%w: prefilter input must be a live cubemap", ErrPassFailed)
	}
	start := time.Now()
	levels := PrefilterLevels(size)
	pre, err := b.newCubemap(size, len(levels))
	if err != nil {
		return nil, err
	}
	roughness := b.prefilter.Location("roughness")
	base := []Uniform{
		{b.prefilter.Location("environmentMap"), gfx.Int(0)},
		{b.prefilter.Location("resolution"), gfx.Float(cubemap.Width())},
		{b.prefilter.Location("sampleCount"), gfx.Int(b.opts.PrefilterSamples)},
	}
	for _, lvl := range levels {
		extra := append([]Uniform{{roughness, gfx.Float(lvl.Roughness)}}, base...)
		if err := b.renderFaces(pre, lvl.Level, b.prefilter, cubemap, extra); err != nil {
			pre.Release()
			return nil, err
		}
		logger.Debugf("prefilter: level %d (%dx%d) roughness %.3f", lvl.Level, lvl.Size, lvl.Size, lvl.Roughness)
	}
	pre.SetFilter(gfx.FilterTrilinear)
	b.record("prefilter", pre, gfx.CubeFaces*len(levels), start)
	return pre, nil
}

// BRDF integrates the split-sum BRDF into a size x size RG table indexed by
// (NdotV, roughness). R is the scale and G the bias applied to F0.
func (b *Baker) BRDF(size int) (*gfx.Texture, error) {
	start := time.Now()
	lut, err := gfx.NewTexture(b.dev, gfx.TextureDesc{Width: size, Height: size, Format: gfx.FormatRG16F, Mips: 1}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPassFailed, err)
	}
	err = b.runner.Run(Pass{
		Target:   Target{Texture: lut},
		Shader:   b.brdf,
		Uniforms: []Uniform{{b.brdf.Location("sampleCount"), gfx.Int(b.opts.BRDFSamples)}},
		Proxy:    gfx.ProxyQuad,
	})
	if err != nil {
		lut.Release()
		return nil, err
	}
	lut.SetFilter(gfx.FilterBilinear)
	b.record("brdf", lut, 1, start)
	return lut, nil
}

// Bake runs all four stages. It either returns a complete Environment or
// releases everything it created and returns the first error. The
// intermediate environment cubemap is released once both convolutions have
// consumed it.
func (b *Baker) Bake(equirect *gfx.Texture) (*Environment, error) {
	logger.Infof("baking environment (cubemap %d, irradiance %d, prefilter %d, brdf %d)",
		b.opts.CubemapSize, b.opts.IrradianceSize, b.opts.PrefilterSize, b.opts.BRDFSize)

	cube, err := b.EquirectToCubemap(equirect, b.opts.CubemapSize)
	if err != nil {
		return nil, err
	}
	defer cube.Release()

	env := &Environment{}
	fail := func(err error) (*Environment, error) {
		env.Release()
		return nil, err
	}
	if env.Irradiance, err = b.Irradiance(cube, b.opts.IrradianceSize); err != nil {
		return fail(err)
	}
	if env.Prefilter, err = b.Prefilter(cube, b.opts.PrefilterSize); err != nil {
		return fail(err)
	}
	if env.BRDF, err = b.BRDF(b.opts.BRDFSize); err != nil {
		return fail(err)
	}
	logger.Info("environment baked")
	return env, nil
}
