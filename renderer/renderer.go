// Package renderer drives the per-frame update and draw of a set of models.
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/material"
)

// Camera supplies the view state of a frame.
type Camera interface {
	Position() mgl32.Vec3
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

// Keyboard reports held keys. core.Window implements it.
type Keyboard interface {
	IsKeyPressed(key int) bool
}

// Model is a GPU mesh drawn with a material. Transform is applied before
// the per-instance translation.
type Model struct {
	Name      string
	Mesh      uint32
	Material  *material.Material
	Transform mgl32.Mat4
	// Spin, when set, is post-multiplied into Transform on every update.
	Spin *mgl32.Mat4
	// Bounds is the model-space box of the mesh. Instances whose box falls
	// outside the view frustum are skipped; nil disables culling.
	Bounds *core.AABB
}

func NewModel(name string, mesh uint32, mat *material.Material) *Model {
	return &Model{Name: name, Mesh: mesh, Material: mat, Transform: mgl32.Ident4()}
}

// Instance places a model in the world.
type Instance struct {
	Model    *Model
	Position mgl32.Vec3
}

// Param is a scalar uniform animated by keyboard input and clamped to
// [Min, Max].
type Param struct {
	Name        string
	Value       float32
	Step        float32
	Min, Max    float32
	IncreaseKey int
	DecreaseKey int
}

// Nudge moves the value by dir steps and clamps it.
func (p *Param) Nudge(dir float32) {
	p.Value += dir * p.Step
	if p.Value > p.Max {
		p.Value = p.Max
	}
	if p.Value < p.Min {
		p.Value = p.Min
	}
}

// Driver updates shared uniforms and submits draws once per frame.
type Driver struct {
	dev       gfx.Device
	camera    Camera
	keyboard  Keyboard
	instances []Instance
	params    []*Param
	hooks     []func(s *gfx.Shader)
	culled    int
}

func NewDriver(dev gfx.Device, camera Camera, keyboard Keyboard) *Driver {
	return &Driver{dev: dev, camera: camera, keyboard: keyboard}
}

// Add appends a draw of model at position.
func (d *Driver) Add(model *Model, position mgl32.Vec3) {
	d.instances = append(d.instances, Instance{Model: model, Position: position})
}

// AddParam registers an animated parameter and returns it.
func (d *Driver) AddParam(p *Param) *Param {
	d.params = append(d.params, p)
	return p
}

// OnShader registers a callback run once per distinct shader on every
// update, after the camera and parameters have been written.
func (d *Driver) OnShader(fn func(s *gfx.Shader)) {
	d.hooks = append(d.hooks, fn)
}

// shaders returns each distinct live shader once, in draw order.
func (d *Driver) shaders() []*gfx.Shader {
	var out []*gfx.Shader
	seen := make(map[*gfx.Shader]bool)
	for _, in := range d.instances {
		if in.Model == nil || in.Model.Material == nil {
			continue
		}
		s := in.Model.Material.Shader
		if s.Released() || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Update animates models and parameters, then writes viewPos and every
// parameter once per shader. Materials sharing a shader share the write.
func (d *Driver) Update() {
	seen := make(map[*Model]bool)
	for _, in := range d.instances {
		m := in.Model
		if m != nil && m.Spin != nil && !seen[m] {
			seen[m] = true
			m.Transform = m.Transform.Mul4(*m.Spin)
		}
	}

	if d.keyboard != nil {
		for _, p := range d.params {
			if d.keyboard.IsKeyPressed(p.IncreaseKey) {
				p.Nudge(1)
			}
			if d.keyboard.IsKeyPressed(p.DecreaseKey) {
				p.Nudge(-1)
			}
		}
	}

	eye := d.camera.Position()
	for _, s := range d.shaders() {
		s.SetLoc(gfx.LocVectorView, gfx.Vec3(eye))
		for _, p := range d.params {
			s.SetNamed(p.Name, gfx.Float(p.Value))
		}
		for _, fn := range d.hooks {
			fn(s)
		}
	}
}

// Draw submits every visible instance. A model without a mesh or material
// is a setup error and stops the frame.
func (d *Driver) Draw() error {
	view := d.camera.View()
	proj := d.camera.Projection()
	frustum := FrustumFromVP(proj.Mul4(view))
	d.culled = 0
	for i, in := range d.instances {
		m := in.Model
		if m == nil || m.Material == nil || m.Mesh == 0 {
			return fmt.Errorf("instance %d: model has no mesh or material", i)
		}
		model := mgl32.Translate3D(in.Position[0], in.Position[1], in.Position[2]).Mul4(m.Transform)
		if m.Bounds != nil && !frustum.Intersects(m.Bounds.Transform(model)) {
			d.culled++
			continue
		}
		if err := m.Material.Draw(d.dev, m.Mesh, model, view, proj); err != nil {
			return fmt.Errorf("instance %d (%s): %w", i, m.Name, err)
		}
	}
	return nil
}

// Culled returns how many instances the last Draw skipped.
func (d *Driver) Culled() int { return d.culled }

// Frame runs Update followed by Draw.
func (d *Driver) Frame() error {
	d.Update()
	return d.Draw()
}
