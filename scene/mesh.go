package scene

import (
	"fmt"

	"pbr-engine/core"
	"pbr-engine/gfx"
)

// Mesh holds CPU-side geometry and, once uploaded, its device handle.
type Mesh struct {
	Name string
	Data core.MeshData
	// GPU is the device mesh id, zero until Upload succeeds.
	GPU uint32
}

func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{Name: name, Data: core.MeshData{Vertices: vertices, Indices: indices}}
}

// Upload sends the geometry to dev. Uploading twice is a no-op.
func (m *Mesh) Upload(dev gfx.Device) error {
	if m.GPU != 0 {
		return nil
	}
	id, err := dev.UploadMesh(&m.Data)
	if err != nil {
		return fmt.Errorf("upload mesh %q: %w", m.Name, err)
	}
	m.GPU = id
	return nil
}

// Release frees the device copy and zeroes GPU.
func (m *Mesh) Release(dev gfx.Device) {
	if m.GPU == 0 {
		return
	}
	dev.DeleteMesh(m.GPU)
	m.GPU = 0
}
