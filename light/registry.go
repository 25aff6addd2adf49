// Package light keeps a fixed-size table of scene lights and writes them to
// the lights[] uniform array of a shader.
package light

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

// MaxLights matches the size of the lights[] array in the lighting shaders.
const MaxLights = 4

// ErrCapacityExceeded is returned when registering past the registry capacity.
var ErrCapacityExceeded = errors.New("light registry is full")

// Type is encoded in lights[i].type.
type Type int32

const (
	Directional Type = iota
	Point
)

func (t Type) String() string {
	switch t {
	case Directional:
		return "directional"
	case Point:
		return "point"
	}
	return fmt.Sprintf("Type(%d)", int32(t))
}

// ID is the index of a light in its registry and in the shader array.
type ID int

// Light may be mutated at any time; changes reach a shader on the next Push.
type Light struct {
	Type     Type
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Color    core.RGBA8
	Enabled  bool

	locs map[*gfx.Shader]*locations
}

type locations struct {
	position, target, color, enabled, typ gfx.Location
}

// Registry assigns array slots to lights in registration order.
type Registry struct {
	lights   []*Light
	capacity int
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = MaxLights
	}
	return &Registry{lights: make([]*Light, 0, capacity), capacity: capacity}
}

// Register copies l into the next free slot.
func (r *Registry) Register(l Light) (ID, error) {
	if len(r.lights) >= r.capacity {
		return -1, fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, r.capacity)
	}
	l.locs = nil
	r.lights = append(r.lights, &l)
	return ID(len(r.lights) - 1), nil
}

// Light returns the registered light for id, or nil.
func (r *Registry) Light(id ID) *Light {
	if id < 0 || int(id) >= len(r.lights) {
		return nil
	}
	return r.lights[id]
}

func (r *Registry) Len() int      { return len(r.lights) }
func (r *Registry) Capacity() int { return r.capacity }

// Push writes the current fields of light id into lights[id] of s.
// Locations are resolved once per shader and cached on the light.
func (r *Registry) Push(id ID, s *gfx.Shader) error {
	l := r.Light(id)
	if l == nil {
		return fmt.Errorf("unknown light %d", id)
	}
	if s.Released() {
		return fmt.Errorf("push of light %d to a released shader", id)
	}
	if l.locs == nil {
		l.locs = make(map[*gfx.Shader]*locations)
	}
	locs, ok := l.locs[s]
	if !ok {
		prefix := fmt.Sprintf("lights[%d].", id)
		locs = &locations{
			position: s.Location(prefix + "position"),
			target:   s.Location(prefix + "target"),
			color:    s.Location(prefix + "color"),
			enabled:  s.Location(prefix + "enabled"),
			typ:      s.Location(prefix + "type"),
		}
		l.locs[s] = locs
	}

	enabled := gfx.Int(0)
	if l.Enabled {
		enabled = 1
	}
	s.Set(locs.enabled, enabled)
	s.Set(locs.typ, gfx.Int(l.Type))
	s.Set(locs.position, gfx.Vec3(l.Position))
	s.Set(locs.target, gfx.Vec3(l.Target))
	s.Set(locs.color, gfx.Vec4(l.Color.Normalize().Vec4()))
	return nil
}

// PushAll pushes every light in registration order.
func (r *Registry) PushAll(s *gfx.Shader) error {
	for id := range r.lights {
		if err := r.Push(ID(id), s); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes every light.
func (r *Registry) Reset() {
	r.lights = r.lights[:0]
}
