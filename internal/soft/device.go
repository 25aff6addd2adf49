// Package soft implements gfx.Device on the CPU. Offscreen passes are
// rasterized by Go kernels that mirror the bake shaders; mesh draws are
// recorded but not rasterized. It backs the headless bake command and the
// tests of every package that talks to a gfx.Device.
package soft

import (
	"fmt"
	"runtime"
	"strings"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/log"
)

var logger = log.New("soft")

type program struct {
	name   string
	kernel Kernel
	locs   map[string]int32
	values map[int32]gfx.Value
}

type framebuffer struct {
	width, height int
	tex           uint32
	face, level   int
}

// DrawCall records one DrawMesh submission.
type DrawCall struct {
	Mesh     uint32
	Program  uint32
	Textures map[int]uint32
}

type Device struct {
	nextID       uint32
	textures     map[uint32]*texture
	programs     map[uint32]*program
	framebuffers map[uint32]*framebuffer
	meshes       map[uint32]*core.MeshData

	bound    uint32
	viewport gfx.Viewport
	depth    bool
	current  uint32
	units    map[int]uint32

	draws      []DrawCall
	proxyDraws int
	workers    int
	kernels    map[string]Kernel
}

// New returns a device whose default framebuffer is width x height.
func New(width, height int) *Device {
	return &Device{
		textures:     make(map[uint32]*texture),
		programs:     make(map[uint32]*program),
		framebuffers: make(map[uint32]*framebuffer),
		meshes:       make(map[uint32]*core.MeshData),
		viewport:     gfx.Viewport{Width: int32(width), Height: int32(height)},
		depth:        true,
		units:        make(map[int]uint32),
		workers:      runtime.GOMAXPROCS(0),
		kernels:      builtinKernels(),
	}
}

// RegisterKernel makes programs compiled with the given name run k.
func (d *Device) RegisterKernel(name string, k Kernel) {
	d.kernels[name] = k
}

// SetWorkers bounds the number of rows shaded concurrently.
func (d *Device) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	d.workers = n
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// ── Textures ─────────────────────────────────────────────────────────────────

func (d *Device) CreateTexture(desc gfx.TextureDesc, img *gfx.Image) (uint32, error) {
	t := newTexture(desc)
	if img != nil {
		if img.Width != desc.Width || img.Height != desc.Height {
			return 0, fmt.Errorf("image %dx%d does not match texture %dx%d", img.Width, img.Height, desc.Width, desc.Height)
		}
		if img.Format.Channels() != desc.Format.Channels() {
			return 0, fmt.Errorf("image format %s does not match texture format %s", img.Format, desc.Format)
		}
		dst := t.levels[0][0]
		if img.Format.IsFloat() {
			copy(dst, img.F32)
		} else {
			for i, v := range img.U8 {
				dst[i] = float32(v) / 255
			}
		}
		if desc.Mips > 1 {
			for l := 1; l < desc.Mips; l++ {
				t.downsample(l)
			}
		}
	}
	id := d.id()
	d.textures[id] = t
	return id, nil
}

func (d *Device) SetTextureFilter(tex uint32, filter gfx.Filter) {
	if t, ok := d.textures[tex]; ok {
		t.filter = filter
	}
}

// TextureFilter returns the filter last set on tex.
func (d *Device) TextureFilter(tex uint32) gfx.Filter {
	if t, ok := d.textures[tex]; ok {
		return t.filter
	}
	return gfx.FilterPoint
}

func (d *Device) GenerateMipmaps(tex uint32) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	for l := 1; l < t.desc.Mips; l++ {
		t.downsample(l)
	}
}

func (d *Device) ReadTexture(tex uint32, face, level int) ([]float32, error) {
	t, ok := d.textures[tex]
	if !ok {
		return nil, fmt.Errorf("unknown texture %d", tex)
	}
	if face < 0 || face >= len(t.levels) || level < 0 || level >= t.desc.Mips {
		return nil, fmt.Errorf("texture %d: face %d level %d out of range", tex, face, level)
	}
	out := make([]float32, len(t.levels[face][level]))
	copy(out, t.levels[face][level])
	return out, nil
}

func (d *Device) DeleteTexture(tex uint32) {
	delete(d.textures, tex)
}

// TextureCount returns the number of live textures.
func (d *Device) TextureCount() int {
	return len(d.textures)
}

// ── Shaders ──────────────────────────────────────────────────────────────────

func (d *Device) CompileShader(src gfx.ShaderSource) (uint32, error) {
	if strings.TrimSpace(src.Vertex) == "" || strings.TrimSpace(src.Fragment) == "" {
		return 0, fmt.Errorf("compile failed: empty stage")
	}
	names, err := reflectUniforms(src.Vertex, src.Fragment)
	if err != nil {
		return 0, err
	}
	p := &program{
		name:   src.Name,
		kernel: d.kernels[src.Name],
		locs:   make(map[string]int32, len(names)),
		values: make(map[int32]gfx.Value),
	}
	for i, n := range names {
		p.locs[n] = int32(i)
	}
	id := d.id()
	d.programs[id] = p
	return id, nil
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok {
		return -1
	}
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	if !strings.HasSuffix(name, "]") {
		if loc, ok := p.locs[name+"[0]"]; ok {
			return loc
		}
	}
	return -1
}

func (d *Device) SetUniform(prog uint32, loc int32, v gfx.Value) {
	p, ok := d.programs[prog]
	if !ok || loc < 0 {
		return
	}
	p.values[loc] = v
}

// Uniform reads back the value last written to name.
func (d *Device) Uniform(prog uint32, name string) (gfx.Value, bool) {
	loc := d.UniformLocation(prog, name)
	if loc < 0 {
		return nil, false
	}
	v, ok := d.programs[prog].values[loc]
	return v, ok
}

// Uniforms returns a snapshot of every written uniform of prog keyed by location.
func (d *Device) Uniforms(prog uint32) map[int32]gfx.Value {
	p, ok := d.programs[prog]
	if !ok {
		return nil
	}
	out := make(map[int32]gfx.Value, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

func (d *Device) DeleteShader(prog uint32) {
	delete(d.programs, prog)
	if d.current == prog {
		d.current = 0
	}
}

// ShaderCount returns the number of live programs.
func (d *Device) ShaderCount() int {
	return len(d.programs)
}

// ── Framebuffers ─────────────────────────────────────────────────────────────

func (d *Device) CreateFramebuffer(width, height int) (uint32, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	id := d.id()
	d.framebuffers[id] = &framebuffer{width: width, height: height}
	return id, nil
}

func (d *Device) AttachColor(fb, tex uint32, face, level int) error {
	f, ok := d.framebuffers[fb]
	if !ok {
		return fmt.Errorf("unknown framebuffer %d", fb)
	}
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("unknown texture %d", tex)
	}
	if face < 0 || face >= len(t.levels) || level < 0 || level >= t.desc.Mips {
		return fmt.Errorf("framebuffer incomplete: face %d level %d out of range", face, level)
	}
	if w, h := t.levelDims(level); w != f.width || h != f.height {
		return fmt.Errorf("framebuffer incomplete: attachment %dx%d, framebuffer %dx%d", w, h, f.width, f.height)
	}
	if t.desc.Format == gfx.FormatRGB32F || t.desc.Format == gfx.FormatRGB16F {
		return fmt.Errorf("framebuffer incomplete: %s is not color-renderable", t.desc.Format)
	}
	f.tex, f.face, f.level = tex, face, level
	return nil
}

func (d *Device) DeleteFramebuffer(fb uint32) {
	delete(d.framebuffers, fb)
	if d.bound == fb {
		d.bound = 0
	}
}

// FramebufferCount returns the number of live framebuffers.
func (d *Device) FramebufferCount() int {
	return len(d.framebuffers)
}

func (d *Device) BoundFramebuffer() uint32   { return d.bound }
func (d *Device) BindFramebuffer(fb uint32)  { d.bound = fb }
func (d *Device) Viewport() gfx.Viewport     { return d.viewport }
func (d *Device) SetViewport(v gfx.Viewport) { d.viewport = v }
func (d *Device) DepthTest() bool            { return d.depth }
func (d *Device) SetDepthTest(enabled bool)  { d.depth = enabled }

func (d *Device) Clear(c core.Color) {
	t, f := d.target()
	if t == nil {
		return
	}
	ch := t.desc.Format.Channels()
	rgba := [4]float32{c.R, c.G, c.B, c.A}
	data := t.levels[f.face][f.level]
	for i := 0; i < len(data); i += ch {
		copy(data[i:i+ch], rgba[:ch])
	}
}

func (d *Device) target() (*texture, *framebuffer) {
	f, ok := d.framebuffers[d.bound]
	if !ok || f.tex == 0 {
		return nil, nil
	}
	t, ok := d.textures[f.tex]
	if !ok {
		return nil, nil
	}
	return t, f
}

// ── Drawing ──────────────────────────────────────────────────────────────────

func (d *Device) UseShader(prog uint32) { d.current = prog }

func (d *Device) BindTexture(unit int, tex uint32) {
	if tex == 0 {
		delete(d.units, unit)
		return
	}
	d.units[unit] = tex
}

func (d *Device) DrawProxy(proxy gfx.Proxy) {
	d.proxyDraws++
	p, ok := d.programs[d.current]
	if !ok {
		logger.Warning("proxy draw without a program")
		return
	}
	if p.kernel == nil {
		logger.Warningf("program %q has no software kernel", p.name)
		return
	}
	t, f := d.target()
	if t == nil {
		logger.Warning("proxy draw without a color attachment")
		return
	}
	if err := d.rasterize(proxy, p, t, f); err != nil {
		logger.Errorf("proxy draw: %v", err)
	}
}

// ProxyDraws returns the number of DrawProxy calls so far.
func (d *Device) ProxyDraws() int {
	return d.proxyDraws
}

func (d *Device) UploadMesh(data *core.MeshData) (uint32, error) {
	if data == nil || len(data.Vertices) == 0 {
		return 0, fmt.Errorf("empty mesh")
	}
	id := d.id()
	d.meshes[id] = data
	return id, nil
}

func (d *Device) DrawMesh(mesh uint32) {
	if _, ok := d.meshes[mesh]; !ok {
		logger.Warningf("draw of unknown mesh %d", mesh)
		return
	}
	units := make(map[int]uint32, len(d.units))
	for k, v := range d.units {
		units[k] = v
	}
	d.draws = append(d.draws, DrawCall{Mesh: mesh, Program: d.current, Textures: units})
}

func (d *Device) DeleteMesh(mesh uint32) {
	delete(d.meshes, mesh)
}

// DrawCalls returns the mesh draws recorded since the last ResetDrawCalls.
func (d *Device) DrawCalls() []DrawCall {
	return d.draws
}

func (d *Device) ResetDrawCalls() {
	d.draws = d.draws[:0]
}

var _ gfx.Device = (*Device)(nil)
