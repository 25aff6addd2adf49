package scene

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/core"
)

// CreateCube generates a box with per-face normals and UVs, centered at the origin.
func CreateCube(width, height, length float32) *Mesh {
	hw, hh, hl := width/2, height/2, length/2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	half := mgl32.Vec3{hw, hh, hl}
	scale := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{v[0] * half[0], v[1] * half[1], v[2] * half[2]}
	}

	var vertices []core.Vertex
	var indices []uint32
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			vertices = append(vertices, core.Vertex{
				Position: scale(p),
				Normal:   f.normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	m := NewMesh("Cube", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateSphere generates a UV-sphere mesh
func CreateSphere(radius float32, rings, slices int) *Mesh {
	if slices < 3 {
		slices = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= slices; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(slices)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       mgl32.Vec2{float32(seg) / float32(slices), float32(ring) / float32(rings)},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < slices; seg++ {
			current := uint32(ring*(slices+1) + seg)
			next := current + uint32(slices+1)

			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}

	m := NewMesh("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateTorus generates a torus whose tube radius is radius*size/2 around a
// ring of radius size/2.
func CreateTorus(radius, size float32, radSeg, sides int) *Mesh {
	if radSeg < 3 {
		radSeg = 3
	}
	if sides < 3 {
		sides = 3
	}
	major := size / 2
	minor := radius * size / 2

	var vertices []core.Vertex
	var indices []uint32

	for i := 0; i <= sides; i++ {
		theta := float64(i) * 2.0 * stdmath.Pi / float64(sides)
		cosTheta := float32(stdmath.Cos(theta))
		sinTheta := float32(stdmath.Sin(theta))

		for j := 0; j <= radSeg; j++ {
			phi := float64(j) * 2.0 * stdmath.Pi / float64(radSeg)
			cosPhi := float32(stdmath.Cos(phi))
			sinPhi := float32(stdmath.Sin(phi))

			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{
					(major + minor*cosPhi) * cosTheta,
					minor * sinPhi,
					(major + minor*cosPhi) * sinTheta,
				},
				Normal: mgl32.Vec3{cosPhi * cosTheta, sinPhi, cosPhi * sinTheta}.Normalize(),
				UV:     mgl32.Vec2{float32(i) / float32(sides), float32(j) / float32(radSeg)},
			})
		}
	}

	for i := 0; i < sides; i++ {
		for j := 0; j < radSeg; j++ {
			current := uint32(i*(radSeg+1) + j)
			next := uint32((i+1)*(radSeg+1) + j)

			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}

	m := NewMesh("Torus", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreatePlane generates a flat plane on XZ facing +Y.
func CreatePlane(width, length float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)

			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{-width/2 + u*width, 0, -length/2 + v*length},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	m := NewMesh("Plane", vertices, indices)
	ComputeTangents(m)
	return m
}

// CreateQuad is a single-cell plane.
func CreateQuad(width, length float32) *Mesh {
	m := CreatePlane(width, length, 1)
	m.Name = "Quad"
	return m
}
