package gfx

import "fmt"

// Texture is a reference-counted handle to a GPU texture. The creator holds
// the first reference; every additional owner calls Retain and later Release.
// The GPU texture is deleted exactly once, when the last reference goes away.
type Texture struct {
	dev  Device
	id   uint32
	desc TextureDesc
	refs int
}

// NewTexture allocates a texture on dev. img may be nil for render targets.
func NewTexture(dev Device, desc TextureDesc, img *Image) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("%w: texture size %dx%d", ErrResourceLoad, desc.Width, desc.Height)
	}
	if desc.Cubemap && desc.Width != desc.Height {
		return nil, fmt.Errorf("%w: cubemap faces must be square, got %dx%d", ErrResourceLoad, desc.Width, desc.Height)
	}
	if desc.Mips < 1 {
		desc.Mips = 1
	}
	if img != nil {
		if err := img.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResourceLoad, err)
		}
	}
	id, err := dev.CreateTexture(desc, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceLoad, err)
	}
	return &Texture{dev: dev, id: id, desc: desc, refs: 1}, nil
}

func (t *Texture) ID() uint32              { return t.id }
func (t *Texture) Desc() TextureDesc       { return t.desc }
func (t *Texture) Width() int              { return t.desc.Width }
func (t *Texture) Height() int             { return t.desc.Height }
func (t *Texture) Format() PixelFormat     { return t.desc.Format }
func (t *Texture) IsCubemap() bool         { return t.desc.Cubemap }
func (t *Texture) Mips() int               { return t.desc.Mips }
func (t *Texture) LevelSize(level int) int { return LevelSize(t.desc.Width, level) }

// Faces is 6 for a cubemap regardless of its mip count, 1 otherwise.
func (t *Texture) Faces() int {
	if t.desc.Cubemap {
		return CubeFaces
	}
	return 1
}

// Released reports whether the GPU texture has been deleted.
func (t *Texture) Released() bool {
	return t == nil || t.refs <= 0
}

// Retain adds a reference and returns t for chaining.
func (t *Texture) Retain() *Texture {
	if !t.Released() {
		t.refs++
	}
	return t
}

// Release drops a reference. Releasing a dead handle does nothing.
func (t *Texture) Release() {
	if t.Released() {
		return
	}
	t.refs--
	if t.refs == 0 {
		t.dev.DeleteTexture(t.id)
		t.id = 0
	}
}

func (t *Texture) SetFilter(f Filter) {
	if !t.Released() {
		t.dev.SetTextureFilter(t.id, f)
	}
}

// GenerateMipmaps fills levels 1..Mips-1 from level 0.
func (t *Texture) GenerateMipmaps() {
	if !t.Released() && t.desc.Mips > 1 {
		t.dev.GenerateMipmaps(t.id)
	}
}

// Read returns the texels of one face and mip level.
func (t *Texture) Read(face, level int) ([]float32, error) {
	if t.Released() {
		return nil, fmt.Errorf("read of released texture")
	}
	if face < 0 || face >= t.Faces() || level < 0 || level >= t.desc.Mips {
		return nil, fmt.Errorf("face %d level %d out of range", face, level)
	}
	return t.dev.ReadTexture(t.id, face, level)
}
