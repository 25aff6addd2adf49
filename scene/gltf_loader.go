package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

// LoadGLTF opens a .glb or .gltf file and flattens every mesh primitive into
// a single Mesh. Node transforms are ignored; the demo models are authored
// in model space. Primitives without positions are skipped with a warning.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: gltf open %q: %v", gfx.ErrResourceLoad, path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := NewMesh(name, nil, nil)
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if err := appendGLTFPrimitive(doc, out, *prim); err != nil {
				logger.Warningf("gltf %s: mesh %d prim %d: %v", name, mi, pi, err)
			}
		}
	}
	if len(out.Data.Vertices) == 0 {
		return nil, fmt.Errorf("%w: gltf %q has no triangle geometry", gfx.ErrResourceLoad, path)
	}

	ComputeTangents(out)
	return out, nil
}

// appendGLTFPrimitive converts one glTF mesh primitive and appends it to dst,
// rebasing its indices.
func appendGLTFPrimitive(doc *gltf.Document, dst *Mesh, prim gltf.Primitive) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return fmt.Errorf("unsupported primitive mode %d", prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	base := uint32(len(dst.Data.Vertices))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		dst.Data.Vertices = append(dst.Data.Vertices, v)
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			dst.Data.Indices = append(dst.Data.Indices, base+i)
		}
	} else {
		for i := range positions {
			dst.Data.Indices = append(dst.Data.Indices, base+uint32(i))
		}
	}
	return nil
}
