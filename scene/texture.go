package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdouchement/hdr"
	_ "github.com/mdouchement/hdr/codec/rgbe"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"pbr-engine/core"
	"pbr-engine/gfx"
	"pbr-engine/log"
)

var logger = log.New("scene")

// DecodeImage reads a PNG, JPEG, BMP or TIFF stream and converts it to an
// RGBA8 image in upload order.
func DecodeImage(r io.Reader) (*gfx.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &gfx.Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: gfx.FormatRGBA8,
		U8:     rgba.Pix,
	}, nil
}

// LoadImage reads an LDR image file from disk.
func LoadImage(path string) (*gfx.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open image %q: %v", gfx.ErrResourceLoad, path, err)
	}
	defer f.Close()

	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image %q: %v", gfx.ErrResourceLoad, path, err)
	}
	return img, nil
}

// DecodeHDR reads a Radiance RGBE stream into an RGB32F image. Pixel values
// are linear radiance and are not clamped.
func DecodeHDR(r io.Reader) (*gfx.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	hm, ok := src.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("not a high dynamic range image")
	}
	b := hm.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &gfx.Image{Width: w, Height: h, Format: gfx.FormatRGB32F, F32: make([]float32, w*h*3)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := hm.HDRAt(x, y).HDRRGBA()
			out.F32[i+0] = float32(cr)
			out.F32[i+1] = float32(cg)
			out.F32[i+2] = float32(cb)
			i += 3
		}
	}
	return out, nil
}

// LoadHDR reads a .hdr panorama from disk.
func LoadHDR(path string) (*gfx.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open hdr %q: %v", gfx.ErrResourceLoad, path, err)
	}
	defer f.Close()

	img, err := DecodeHDR(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode hdr %q: %v", gfx.ErrResourceLoad, path, err)
	}
	return img, nil
}

// LoadTexture loads an image file and uploads it as a single-level 2D
// texture. Files ending in .hdr are uploaded as RGB32F.
func LoadTexture(dev gfx.Device, path string) (*gfx.Texture, error) {
	var (
		img *gfx.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".hdr") {
		img, err = LoadHDR(path)
	} else {
		img, err = LoadImage(path)
	}
	if err != nil {
		return nil, err
	}
	tex, err := UploadImage(dev, img)
	if err != nil {
		return nil, err
	}
	logger.Debugf("loaded %s (%dx%d %s)", path, img.Width, img.Height, img.Format)
	return tex, nil
}

// UploadImage creates a 2D texture from img.
func UploadImage(dev gfx.Device, img *gfx.Image) (*gfx.Texture, error) {
	return gfx.NewTexture(dev, gfx.TextureDesc{
		Width:  img.Width,
		Height: img.Height,
		Format: img.Format,
		Mips:   1,
	}, img)
}

// SolidImage returns a 1x1 RGBA8 image of c.
func SolidImage(c core.RGBA8) *gfx.Image {
	return &gfx.Image{Width: 1, Height: 1, Format: gfx.FormatRGBA8, U8: []uint8{c.R, c.G, c.B, c.A}}
}

// CheckerImage returns a size x size RGBA8 checkerboard with cells of cell
// pixels alternating between a and b.
func CheckerImage(size, cell int, a, b core.RGBA8) *gfx.Image {
	if cell < 1 {
		cell = 1
	}
	img := &gfx.Image{Width: size, Height: size, Format: gfx.FormatRGBA8, U8: make([]uint8, size*size*4)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			i := (y*size + x) * 4
			img.U8[i], img.U8[i+1], img.U8[i+2], img.U8[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// LoadTextureOr loads path, falling back to a 1x1 texture of c when the file
// is missing or unreadable.
func LoadTextureOr(dev gfx.Device, path string, c core.RGBA8) (*gfx.Texture, error) {
	if path != "" {
		tex, err := LoadTexture(dev, path)
		if err == nil {
			return tex, nil
		}
		logger.Warningf("%v, using solid fallback", err)
	}
	return UploadImage(dev, SolidImage(c))
}
