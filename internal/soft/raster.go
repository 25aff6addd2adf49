package soft

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"pbr-engine/gfx"
)

// Fragment is the interpolated input of one shaded pixel.
type Fragment struct {
	// Dir is the normalized world direction through the pixel (cube proxy).
	Dir mgl32.Vec3
	// UV is the screen position in [0,1] (quad proxy).
	UV mgl32.Vec2
}

// Kernel computes the RGBA output of one fragment. Kernels run concurrently
// and must only read from env.
type Kernel func(env *Env, frag Fragment) [4]float32

// Env gives a kernel read access to the uniforms and bound textures of the
// current program.
type Env struct {
	d *Device
	p *program
}

func (e *Env) value(name string) gfx.Value {
	loc, ok := e.p.locs[name]
	if !ok {
		return nil
	}
	return e.p.values[loc]
}

func (e *Env) Float(name string) float32 {
	switch v := e.value(name).(type) {
	case gfx.Float:
		return float32(v)
	case gfx.Int:
		return float32(v)
	}
	return 0
}

func (e *Env) Int(name string) int {
	switch v := e.value(name).(type) {
	case gfx.Int:
		return int(v)
	case gfx.Float:
		return int(v)
	}
	return 0
}

func (e *Env) Mat4(name string) mgl32.Mat4 {
	if v, ok := e.value(name).(gfx.Mat4); ok {
		return mgl32.Mat4(v)
	}
	return mgl32.Ident4()
}

// sampler returns the texture bound to the unit stored in a sampler uniform.
func (e *Env) sampler(name string) *texture {
	return e.d.textures[e.d.units[e.Int(name)]]
}

// Texture2D samples a 2D sampler uniform at lod 0.
func (e *Env) Texture2D(name string, uv mgl32.Vec2) [4]float32 {
	t := e.sampler(name)
	if t == nil {
		return [4]float32{0, 0, 0, 1}
	}
	return t.sample2D(uv, 0)
}

// TextureCube samples a cube sampler uniform at the given lod.
func (e *Env) TextureCube(name string, dir mgl32.Vec3, lod float32) [4]float32 {
	t := e.sampler(name)
	if t == nil || !t.desc.Cubemap {
		return [4]float32{0, 0, 0, 1}
	}
	return t.sampleCube(dir, lod)
}

func (d *Device) rasterize(proxy gfx.Proxy, p *program, t *texture, f *framebuffer) error {
	env := &Env{d: d, p: p}

	vp := d.viewport
	x0, y0 := int(vp.X), int(vp.Y)
	x1 := clampInt(x0+int(vp.Width), 0, f.width)
	y1 := clampInt(y0+int(vp.Height), 0, f.height)
	x0, y0 = clampInt(x0, 0, f.width), clampInt(y0, 0, f.height)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	vw, vh := float32(vp.Width), float32(vp.Height)

	var invVP mgl32.Mat4
	switch proxy {
	case gfx.ProxyCube:
		vpm := env.Mat4("projection").Mul4(env.Mat4("view"))
		if vpm.Det() == 0 {
			return fmt.Errorf("singular view-projection")
		}
		invVP = vpm.Inv()
	case gfx.ProxyQuad:
	default:
		return fmt.Errorf("unknown proxy %d", proxy)
	}

	ch := t.desc.Format.Channels()
	data := t.levels[f.face][f.level]

	var g errgroup.Group
	g.SetLimit(d.workers)
	for y := y0; y < y1; y++ {
		y := y
		g.Go(func() error {
			ny := (float32(y-int(vp.Y))+0.5)/vh*2 - 1
			for x := x0; x < x1; x++ {
				nx := (float32(x-int(vp.X))+0.5)/vw*2 - 1
				var frag Fragment
				if proxy == gfx.ProxyCube {
					near := invVP.Mul4x1(mgl32.Vec4{nx, ny, -1, 1})
					far := invVP.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
					frag.Dir = far.Vec3().Mul(1 / far[3]).Sub(near.Vec3().Mul(1 / near[3])).Normalize()
				} else {
					frag.UV = mgl32.Vec2{(nx + 1) / 2, (ny + 1) / 2}
				}
				out := p.kernel(env, frag)
				copy(data[(y*f.width+x)*ch:(y*f.width+x)*ch+ch], out[:ch])
			}
			return nil
		})
	}
	return g.Wait()
}
