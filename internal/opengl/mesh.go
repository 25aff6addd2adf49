package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/core"
)

// gpuMesh holds the OpenGL buffer objects for an uploaded mesh.
type gpuMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	count      int32
	hasIndices bool
}

// UploadMesh creates a VAO with the vertex layout shared by every mesh
// shader: 0 position, 1 uv, 2 normal, 3 tangent.
func (d *Device) UploadMesh(data *core.MeshData) (uint32, error) {
	if data == nil || len(data.Vertices) == 0 {
		return 0, fmt.Errorf("empty mesh")
	}
	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &gpuMesh{
		count:      int32(len(data.Vertices)),
		hasIndices: len(data.Indices) > 0,
	}
	if gpu.hasIndices {
		gpu.count = int32(len(data.Indices))
	}

	gl.GenVertexArrays(1, &gpu.vao)
	gl.GenBuffers(1, &gpu.vbo)
	gl.BindVertexArray(gpu.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*int(stride), gl.Ptr(data.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		loc    uint32
		size   int32
		offset uintptr
	}{
		{0, 3, unsafe.Offsetof(v.Position)},
		{1, 2, unsafe.Offsetof(v.UV)},
		{2, 3, unsafe.Offsetof(v.Normal)},
		{3, 4, unsafe.Offsetof(v.Tangent)},
	}
	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.loc)
		gl.VertexAttribPointer(a.loc, a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.hasIndices {
		gl.GenBuffers(1, &gpu.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	d.meshes[gpu.vao] = gpu
	return gpu.vao, nil
}

func (d *Device) DrawMesh(mesh uint32) {
	gpu, ok := d.meshes[mesh]
	if !ok {
		logger.Warningf("draw of unknown mesh %d", mesh)
		return
	}
	gl.BindVertexArray(gpu.vao)
	if gpu.hasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gpu.count)
	}
	gl.BindVertexArray(0)
}

// DeleteMesh frees the GPU buffers of a mesh.
func (d *Device) DeleteMesh(mesh uint32) {
	gpu, ok := d.meshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.vao)
	gl.DeleteBuffers(1, &gpu.vbo)
	if gpu.hasIndices {
		gl.DeleteBuffers(1, &gpu.ebo)
	}
	delete(d.meshes, mesh)
}
