package gfx

import "fmt"

// PixelFormat is the storage format of a texture.
type PixelFormat int

const (
	FormatRGBA8 PixelFormat = iota
	FormatRGB16F
	FormatRGBA16F
	FormatRG16F
	FormatRGB32F
	FormatRGBA32F
)

// Channels returns the number of color components stored per texel.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatRG16F:
		return 2
	case FormatRGB16F, FormatRGB32F:
		return 3
	default:
		return 4
	}
}

// IsFloat reports whether texels are stored as floating point.
func (f PixelFormat) IsFloat() bool {
	return f != FormatRGBA8
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGB16F:
		return "RGB16F"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRG16F:
		return "RG16F"
	case FormatRGB32F:
		return "RGB32F"
	case FormatRGBA32F:
		return "RGBA32F"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Filter selects texture minification and magnification filtering.
type Filter int

const (
	FilterPoint Filter = iota
	FilterBilinear
	FilterTrilinear
)

// TextureDesc describes the storage of a texture.
type TextureDesc struct {
	Width   int
	Height  int
	Format  PixelFormat
	Cubemap bool
	Mips    int
}

// Image is CPU-side pixel data in upload order (first row is t=0).
// U8 is used for FormatRGBA8, F32 for float formats.
type Image struct {
	Width  int
	Height int
	Format PixelFormat
	U8     []uint8
	F32    []float32
}

// Validate checks that the pixel slice matches the declared size.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	want := img.Width * img.Height * img.Format.Channels()
	if img.Format.IsFloat() {
		if len(img.F32) != want {
			return fmt.Errorf("%s image: expected %d floats, got %d", img.Format, want, len(img.F32))
		}
		return nil
	}
	if len(img.U8) != want {
		return fmt.Errorf("%s image: expected %d bytes, got %d", img.Format, want, len(img.U8))
	}
	return nil
}

// CubeFaces is the number of faces of a cubemap, in GL order +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

// MipCount returns log2(size)+1, the length of a full mip chain.
func MipCount(size int) int {
	n := 1
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}

// LevelSize returns the edge length of a mip level.
func LevelSize(size, level int) int {
	s := size >> uint(level)
	if s < 1 {
		return 1
	}
	return s
}
