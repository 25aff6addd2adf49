package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/log"
)

var logger = log.New("opengl")

// Device is the OpenGL 4.1 core implementation of gfx.Device.
// It must be created and used on the goroutine that owns the GL context.
type Device struct {
	textures     map[uint32]*texture
	framebuffers map[uint32]*framebuffer
	meshes       map[uint32]*gpuMesh

	cube  proxy
	quad  proxy
	units map[int]uint32
}

// New initialises OpenGL and builds the proxy geometry used by offscreen
// passes. Must be called after the window context is made current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))
	logger.Infof("GLSL version: %s", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.Enable(gl.CULL_FACE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	d := &Device{
		textures:     make(map[uint32]*texture),
		framebuffers: make(map[uint32]*framebuffer),
		meshes:       make(map[uint32]*gpuMesh),
		units:        make(map[int]uint32),
	}
	d.cube = newCubeProxy()
	d.quad = newQuadProxy()
	return d, nil
}

// Destroy frees every object the device still owns.
func (d *Device) Destroy() {
	for id := range d.meshes {
		d.DeleteMesh(id)
	}
	for id := range d.framebuffers {
		d.DeleteFramebuffer(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.cube.destroy()
	d.quad.destroy()
}

func (d *Device) BoundFramebuffer() uint32 {
	var fb int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fb)
	return uint32(fb)
}

func (d *Device) BindFramebuffer(fb uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
}

func (d *Device) Viewport() gfx.Viewport {
	var v [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &v[0])
	return gfx.Viewport{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

func (d *Device) SetViewport(vp gfx.Viewport) {
	gl.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
}

func (d *Device) DepthTest() bool {
	return gl.IsEnabled(gl.DEPTH_TEST)
}

func (d *Device) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

// Clear clears color and depth of the bound framebuffer.
func (d *Device) Clear(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) UseShader(prog uint32) {
	gl.UseProgram(prog)
}

// BindTexture binds tex to a texture unit. Zero unbinds whatever the unit
// holds.
func (d *Device) BindTexture(unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if tex == 0 {
		if prev, ok := d.textures[d.units[unit]]; ok {
			gl.BindTexture(prev.target, 0)
		}
		delete(d.units, unit)
		gl.ActiveTexture(gl.TEXTURE0)
		return
	}
	t, ok := d.textures[tex]
	if !ok {
		logger.Warningf("bind of unknown texture %d", tex)
		gl.ActiveTexture(gl.TEXTURE0)
		return
	}
	gl.BindTexture(t.target, tex)
	d.units[unit] = tex
	gl.ActiveTexture(gl.TEXTURE0)
}

// DrawProxy draws the unit cube or the fullscreen triangle with the current
// program.
func (d *Device) DrawProxy(p gfx.Proxy) {
	switch p {
	case gfx.ProxyCube:
		// The cube is viewed from inside.
		culling := gl.IsEnabled(gl.CULL_FACE)
		gl.Disable(gl.CULL_FACE)
		d.cube.draw()
		if culling {
			gl.Enable(gl.CULL_FACE)
		}
	case gfx.ProxyQuad:
		d.quad.draw()
	default:
		logger.Warningf("unknown proxy %d", p)
	}
}

var _ gfx.Device = (*Device)(nil)
