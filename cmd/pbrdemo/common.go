package main

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/urfave/cli"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/ibl"
	"pbr-engine/internal/opengl"
	"pbr-engine/scene"
	"pbr-engine/shaders"
)

// openWindow creates the window and the GL device bound to its context.
func openWindow(ctx *cli.Context, title string) (*core.Window, *opengl.Device, error) {
	config := core.DefaultWindowConfig()
	config.Width = ctx.Int("width")
	config.Height = ctx.Int("height")
	config.Title = title

	win, err := core.NewWindow(config)
	if err != nil {
		return nil, nil, err
	}
	dev, err := opengl.New()
	if err != nil {
		win.Destroy()
		return nil, nil, err
	}
	return win, dev, nil
}

func bakeOptions(ctx *cli.Context) ibl.Options {
	opts := ibl.DefaultOptions()
	opts.CubemapSize = ctx.Int("cubemap-size")
	opts.IrradianceSize = ctx.Int("irradiance-size")
	opts.PrefilterSize = ctx.Int("prefilter-size")
	opts.BRDFSize = ctx.Int("brdf-size")
	opts.PrefilterSamples = ctx.Int("samples")
	opts.BRDFSamples = ctx.Int("samples")
	return opts
}

// loadPanorama uploads the HDR panorama named by the hdr flag, or a
// procedural sky when it cannot be read.
func loadPanorama(ctx *cli.Context, dev gfx.Device) (*gfx.Texture, error) {
	path := filepath.Join(ctx.String("assets"), ctx.String("hdr"))
	img, err := scene.LoadHDR(path)
	if err != nil {
		logger.Warningf("%v, using a procedural sky", err)
		img = skyPanorama(256, 128)
	}
	return scene.UploadImage(dev, img)
}

// skyPanorama returns an RGB32F equirectangular gradient: bright zenith,
// pale horizon, dark ground and a small hot sun.
func skyPanorama(w, h int) *gfx.Image {
	img := &gfx.Image{Width: w, Height: h, Format: gfx.FormatRGB32F, F32: make([]float32, w*h*3)}
	zenith := [3]float32{0.25, 0.45, 0.95}
	horizon := [3]float32{0.9, 0.9, 1.0}
	ground := [3]float32{0.15, 0.12, 0.1}
	for y := 0; y < h; y++ {
		// Row 0 is straight up.
		elev := float32(0.5 - (float64(y)+0.5)/float64(h))
		for x := 0; x < w; x++ {
			var c [3]float32
			for k := 0; k < 3; k++ {
				if elev >= 0 {
					c[k] = horizon[k] + (zenith[k]-horizon[k])*elev*2
				} else {
					c[k] = horizon[k] + (ground[k]-horizon[k])*float32(math.Min(1, float64(-elev*8)))
				}
			}
			if y == h/4 && x == w/3 {
				c = [3]float32{40, 36, 30}
			}
			i := (y*w + x) * 3
			copy(img.F32[i:i+3], c[:])
		}
	}
	return img
}

// bakeEnvironment runs the full bake and logs its statistics.
func bakeEnvironment(ctx *cli.Context, dev gfx.Device) (*ibl.Environment, []ibl.PassStat, error) {
	baker, err := ibl.NewBaker(dev, bakeOptions(ctx))
	if err != nil {
		return nil, nil, err
	}
	defer baker.Close()

	panorama, err := loadPanorama(ctx, dev)
	if err != nil {
		return nil, nil, err
	}
	defer panorama.Release()

	env, err := baker.Bake(panorama)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range baker.Stats() {
		logger.Infof("baked %s: %dpx %s, %d mips in %s", s.Name, s.Size, s.Format, s.Mips, s.Duration)
	}
	return env, baker.Stats(), nil
}

func loadShader(dev gfx.Device, name string) (*gfx.Shader, error) {
	src, err := shaders.Load(name)
	if err != nil {
		return nil, err
	}
	s, err := gfx.LoadShader(dev, src)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	return s, nil
}

// keyEdge reports presses of a key, not holds.
type keyEdge struct {
	down map[int]bool
}

func (k *keyEdge) pressed(win *core.Window, key int) bool {
	if k.down == nil {
		k.down = make(map[int]bool)
	}
	now := win.IsKeyPressed(key)
	was := k.down[key]
	k.down[key] = now
	return now && !was
}
