package gfx

import (
	"fmt"

	"pbr-engine/log"
)

var logger = log.New("gfx")

// Location is a resolved uniform location, or nothing. Writes through an
// invalid Location are dropped before they reach the device.
type Location struct {
	idx   int32
	valid bool
}

// NoLocation is the invalid Location.
var NoLocation = Location{idx: -1}

// LocationOf wraps a raw location as returned by a device.
func LocationOf(idx int32) Location {
	if idx < 0 {
		return NoLocation
	}
	return Location{idx: idx, valid: true}
}

func (l Location) Valid() bool { return l.valid }

// Index returns the raw location, -1 when invalid.
func (l Location) Index() int32 {
	if !l.valid {
		return -1
	}
	return l.idx
}

// ShaderLoc names a semantic uniform slot resolved once per shader.
type ShaderLoc int

const (
	LocMatrixMVP ShaderLoc = iota
	LocMatrixModel
	LocVectorView
	LocColorDiffuse
	LocRenderMode

	// Material map samplers, in material map order.
	LocMapAlbedo
	LocMapNormal
	LocMapMetalness
	LocMapRoughness
	LocMapOcclusion
	LocMapEmission
	LocMapHeight
	LocMapIrradiance
	LocMapPrefilter
	LocMapBRDF

	LocCount
)

// defaultLocNames are resolved by LoadShader.
var defaultLocNames = map[ShaderLoc]string{
	LocMatrixMVP:    "mvp",
	LocMatrixModel:  "matModel",
	LocVectorView:   "viewPos",
	LocColorDiffuse: "colDiffuse",
	LocMapAlbedo:    "texture0",
}

// Shader is a reference-counted compiled program with a location cache.
// Materials that share a Shader share its uniform state: the last write
// before a draw call wins.
type Shader struct {
	dev   Device
	id    uint32
	name  string
	cache map[string]Location
	refs  int

	// Locs holds semantic slots. Callers may overwrite entries to bind a
	// slot to a different uniform name.
	Locs [LocCount]Location
}

// LoadShader compiles src and resolves the default semantic locations.
func LoadShader(dev Device, src ShaderSource) (*Shader, error) {
	if src.Vertex == "" || src.Fragment == "" {
		return nil, fmt.Errorf("%w: shader %q: missing stage source", ErrResourceLoad, src.Name)
	}
	id, err := dev.CompileShader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: shader %q: %v", ErrResourceLoad, src.Name, err)
	}
	s := &Shader{
		dev:   dev,
		id:    id,
		name:  src.Name,
		cache: make(map[string]Location),
		refs:  1,
	}
	for i := range s.Locs {
		s.Locs[i] = NoLocation
	}
	for slot, name := range defaultLocNames {
		s.Locs[slot] = s.Location(name)
	}
	return s, nil
}

func (s *Shader) ID() uint32   { return s.id }
func (s *Shader) Name() string { return s.name }

// Location resolves a uniform by name, caching the result.
func (s *Shader) Location(name string) Location {
	if s.Released() {
		return NoLocation
	}
	if loc, ok := s.cache[name]; ok {
		return loc
	}
	loc := LocationOf(s.dev.UniformLocation(s.id, name))
	if !loc.Valid() {
		logger.Debugf("shader %q: uniform %q not found", s.name, name)
	}
	s.cache[name] = loc
	return loc
}

// Set writes v to loc. Invalid locations are ignored.
func (s *Shader) Set(loc Location, v Value) {
	if !loc.Valid() || s.Released() {
		return
	}
	s.dev.SetUniform(s.id, loc.idx, v)
}

// SetNamed resolves name and writes v to it.
func (s *Shader) SetNamed(name string, v Value) {
	s.Set(s.Location(name), v)
}

// SetLoc writes v to a semantic slot.
func (s *Shader) SetLoc(slot ShaderLoc, v Value) {
	s.Set(s.Locs[slot], v)
}

func (s *Shader) Released() bool {
	return s == nil || s.refs <= 0
}

func (s *Shader) Retain() *Shader {
	if !s.Released() {
		s.refs++
	}
	return s
}

// Release drops a reference; the program is deleted with the last one.
func (s *Shader) Release() {
	if s.Released() {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.dev.DeleteShader(s.id)
		s.id = 0
	}
}
