// Package shaders embeds the GLSL programs used by the renderer and the
// environment bake.
package shaders

import (
	"embed"
	"fmt"
	"regexp"
	"sort"

	"pbr-engine/gfx"
)

//go:embed glsl
var files embed.FS

// programs maps a program name to its vertex and fragment files.
var programs = map[string][2]string{
	"cubemap":    {"cubemap.vs", "cubemap.fs"},
	"irradiance": {"cubemap.vs", "irradiance.fs"},
	"prefilter":  {"cubemap.vs", "prefilter.fs"},
	"brdf":       {"brdf.vs", "brdf.fs"},
	"pbr":        {"pbr.vs", "pbr.fs"},
	"fog":        {"base_lighting.vs", "fog.fs"},
}

var reInclude = regexp.MustCompile(`(?m)^#include\s+"([^"]+)"\s*$`)

// Load returns the source pair of a named program with includes expanded.
func Load(name string) (gfx.ShaderSource, error) {
	pair, ok := programs[name]
	if !ok {
		return gfx.ShaderSource{}, fmt.Errorf("%w: unknown shader program %q", gfx.ErrResourceLoad, name)
	}
	vs, err := read(pair[0], 0)
	if err != nil {
		return gfx.ShaderSource{}, err
	}
	fs, err := read(pair[1], 0)
	if err != nil {
		return gfx.ShaderSource{}, err
	}
	return gfx.ShaderSource{Name: name, Vertex: vs, Fragment: fs}, nil
}

// Names lists the embedded programs in sorted order.
func Names() []string {
	names := make([]string, 0, len(programs))
	for n := range programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func read(file string, depth int) (string, error) {
	if depth > 4 {
		return "", fmt.Errorf("%w: include depth exceeded at %s", gfx.ErrResourceLoad, file)
	}
	data, err := files.ReadFile("glsl/" + file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", gfx.ErrResourceLoad, err)
	}
	var inner error
	src := reInclude.ReplaceAllStringFunc(string(data), func(line string) string {
		m := reInclude.FindStringSubmatch(line)
		body, err := read(m[1], depth+1)
		if err != nil && inner == nil {
			inner = err
		}
		return body
	})
	return src, inner
}
