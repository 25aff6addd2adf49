package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/gfx"
)

type texture struct {
	target uint32
	desc   gfx.TextureDesc
}

type glFormat struct {
	internal int32
	format   uint32
}

func formatOf(f gfx.PixelFormat) (glFormat, error) {
	switch f {
	case gfx.FormatRGBA8:
		return glFormat{gl.RGBA8, gl.RGBA}, nil
	case gfx.FormatRGB16F:
		return glFormat{gl.RGB16F, gl.RGB}, nil
	case gfx.FormatRGBA16F:
		return glFormat{gl.RGBA16F, gl.RGBA}, nil
	case gfx.FormatRG16F:
		return glFormat{gl.RG16F, gl.RG}, nil
	case gfx.FormatRGB32F:
		return glFormat{gl.RGB32F, gl.RGB}, nil
	case gfx.FormatRGBA32F:
		return glFormat{gl.RGBA32F, gl.RGBA}, nil
	}
	return glFormat{}, fmt.Errorf("unsupported pixel format %d", f)
}

// faceTarget returns the image target for a face; 2D textures have one face.
func (t *texture) faceTarget(face int) uint32 {
	if t.target == gl.TEXTURE_CUBE_MAP {
		return gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}
	return gl.TEXTURE_2D
}

func (t *texture) faces() int {
	if t.target == gl.TEXTURE_CUBE_MAP {
		return gfx.CubeFaces
	}
	return 1
}

// CreateTexture allocates every level of every face. img, when present, is
// uploaded to level 0 of a 2D texture.
func (d *Device) CreateTexture(desc gfx.TextureDesc, img *gfx.Image) (uint32, error) {
	fm, err := formatOf(desc.Format)
	if err != nil {
		return 0, err
	}
	if img != nil && desc.Cubemap {
		return 0, fmt.Errorf("cubemap uploads from CPU images are not supported")
	}
	t := &texture{target: gl.TEXTURE_2D, desc: desc}
	if desc.Cubemap {
		t.target = gl.TEXTURE_CUBE_MAP
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(t.target, id)

	for level := 0; level < desc.Mips; level++ {
		w := int32(gfx.LevelSize(desc.Width, level))
		h := int32(gfx.LevelSize(desc.Height, level))
		for face := 0; face < t.faces(); face++ {
			var pixels unsafe.Pointer
			xtype := uint32(gl.FLOAT)
			if desc.Format == gfx.FormatRGBA8 {
				xtype = gl.UNSIGNED_BYTE
			}
			if img != nil && level == 0 {
				if img.Format.IsFloat() {
					pixels = gl.Ptr(img.F32)
				} else {
					pixels = gl.Ptr(img.U8)
				}
			}
			gl.TexImage2D(t.faceTarget(face), int32(level), fm.internal, w, h, 0, fm.format, xtype, pixels)
		}
	}

	wrap := int32(gl.REPEAT)
	if desc.Cubemap {
		wrap = gl.CLAMP_TO_EDGE
		gl.TexParameteri(t.target, gl.TEXTURE_WRAP_R, wrap)
	}
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(t.target, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(t.target, gl.TEXTURE_MAX_LEVEL, int32(desc.Mips-1))
	gl.BindTexture(t.target, 0)

	d.textures[id] = t
	d.SetTextureFilter(id, gfx.FilterBilinear)
	return id, nil
}

func (d *Device) SetTextureFilter(tex uint32, filter gfx.Filter) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	minF, magF := int32(gl.LINEAR), int32(gl.LINEAR)
	switch filter {
	case gfx.FilterPoint:
		minF, magF = gl.NEAREST, gl.NEAREST
	case gfx.FilterTrilinear:
		if t.desc.Mips > 1 {
			minF = gl.LINEAR_MIPMAP_LINEAR
		}
	}
	gl.BindTexture(t.target, tex)
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, minF)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, magF)
	gl.BindTexture(t.target, 0)
}

func (d *Device) GenerateMipmaps(tex uint32) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	gl.BindTexture(t.target, tex)
	gl.GenerateMipmap(t.target)
	gl.BindTexture(t.target, 0)
}

// ReadTexture reads one face and level back as floats.
func (d *Device) ReadTexture(tex uint32, face, level int) ([]float32, error) {
	t, ok := d.textures[tex]
	if !ok {
		return nil, fmt.Errorf("unknown texture %d", tex)
	}
	if face < 0 || face >= t.faces() || level < 0 || level >= t.desc.Mips {
		return nil, fmt.Errorf("texture %d: face %d level %d out of range", tex, face, level)
	}
	fm, _ := formatOf(t.desc.Format)
	w := gfx.LevelSize(t.desc.Width, level)
	h := gfx.LevelSize(t.desc.Height, level)
	out := make([]float32, w*h*t.desc.Format.Channels())

	gl.BindTexture(t.target, tex)
	gl.GetTexImage(t.faceTarget(face), int32(level), fm.format, gl.FLOAT, gl.Ptr(out))
	gl.BindTexture(t.target, 0)
	return out, nil
}

// DeleteTexture frees a texture and forgets any unit still bound to it.
func (d *Device) DeleteTexture(tex uint32) {
	if _, ok := d.textures[tex]; !ok {
		return
	}
	gl.DeleteTextures(1, &tex)
	delete(d.textures, tex)
	for unit, id := range d.units {
		if id == tex {
			delete(d.units, unit)
		}
	}
}
