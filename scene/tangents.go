package scene

import "github.com/go-gl/mathgl/mgl32"

// ComputeTangents generates per-vertex tangents for tangent-space normal
// mapping. Tangent.W holds the bitangent sign so shaders can rebuild it as
// cross(N, T) * W. Triangles with a degenerate UV area are skipped.
func ComputeTangents(m *Mesh) {
	verts := m.Data.Vertices
	tan := make([]mgl32.Vec3, len(verts))
	bitan := make([]mgl32.Vec3, len(verts))

	accum := func(i0, i1, i2 uint32) {
		v0, v1, v2 := verts[i0], verts[i1], verts[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)

		du1 := v1.UV[0] - v0.UV[0]
		dv1 := v1.UV[1] - v0.UV[1]
		du2 := v2.UV[0] - v0.UV[0]
		dv2 := v2.UV[1] - v0.UV[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		r := 1.0 / denom

		t := e1.Mul(dv2 * r).Sub(e2.Mul(dv1 * r))
		b := e2.Mul(du1 * r).Sub(e1.Mul(du2 * r))
		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(t)
			bitan[i] = bitan[i].Add(b)
		}
	}

	if idx := m.Data.Indices; len(idx) > 0 {
		for i := 0; i+2 < len(idx); i += 3 {
			accum(idx[i], idx[i+1], idx[i+2])
		}
	} else {
		for i := 0; i+2 < len(verts); i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	// Gram-Schmidt against the normal.
	for i := range verts {
		n := verts[i].Normal
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.LenSqr() < 1e-8 {
			if abs(n[0]) < 0.9 {
				t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
			} else {
				t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
			}
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		verts[i].Tangent = t.Vec4(w)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
