package opengl

import gl "github.com/go-gl/gl/v4.1-core/gl"

// proxy is a VAO with a fixed vertex count.
type proxy struct {
	vao   uint32
	vbo   uint32
	count int32
}

// 36 positions (xyz) for a unit cube, CCW winding from the outside.
var cubeVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

func newCubeProxy() proxy {
	p := proxy{count: int32(len(cubeVerts) / 3)}
	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeVerts)*4, gl.Ptr(cubeVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	return p
}

// newQuadProxy returns an attribute-less VAO. The vertex stage builds a
// fullscreen triangle from gl_VertexID.
func newQuadProxy() proxy {
	p := proxy{count: 3}
	gl.GenVertexArrays(1, &p.vao)
	return p
}

func (p proxy) draw() {
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, p.count)
	gl.BindVertexArray(0)
}

func (p proxy) destroy() {
	gl.DeleteVertexArrays(1, &p.vao)
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
}
