package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"pbr-engine/gfx"
)

type texture struct {
	desc   gfx.TextureDesc
	filter gfx.Filter
	// levels[face][level] holds size*size*channels floats, row 0 at t=0.
	levels [][][]float32
}

func newTexture(desc gfx.TextureDesc) *texture {
	t := &texture{desc: desc, filter: gfx.FilterBilinear}
	faces := 1
	if desc.Cubemap {
		faces = gfx.CubeFaces
	}
	ch := desc.Format.Channels()
	t.levels = make([][][]float32, faces)
	for f := range t.levels {
		t.levels[f] = make([][]float32, desc.Mips)
		for l := range t.levels[f] {
			w, h := t.levelDims(l)
			t.levels[f][l] = make([]float32, w*h*ch)
		}
	}
	return t
}

func (t *texture) levelDims(level int) (int, int) {
	return gfx.LevelSize(t.desc.Width, level), gfx.LevelSize(t.desc.Height, level)
}

func (t *texture) texel(face, level, x, y int) [4]float32 {
	w, _ := t.levelDims(level)
	ch := t.desc.Format.Channels()
	p := t.levels[face][level][(y*w+x)*ch:]
	out := [4]float32{0, 0, 0, 1}
	copy(out[:ch], p[:ch])
	return out
}

// bilinear samples one level at normalized (s,t). wrap selects repeat on s.
func (t *texture) bilinear(face, level int, s, tc float32, wrap bool) [4]float32 {
	w, h := t.levelDims(level)
	fx := s*float32(w) - 0.5
	fy := tc*float32(h) - 0.5
	if t.filter == gfx.FilterPoint {
		x := clampInt(int(math.Floor(float64(fx+0.5))), 0, w-1)
		y := clampInt(int(math.Floor(float64(fy+0.5))), 0, h-1)
		if wrap {
			x = wrapInt(int(math.Floor(float64(fx+0.5))), w)
		}
		return t.texel(face, level, x, y)
	}
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	ax := fx - float32(x0)
	ay := fy - float32(y0)
	x1, y1 := x0+1, y0+1
	if wrap {
		x0, x1 = wrapInt(x0, w), wrapInt(x1, w)
	} else {
		x0, x1 = clampInt(x0, 0, w-1), clampInt(x1, 0, w-1)
	}
	y0, y1 = clampInt(y0, 0, h-1), clampInt(y1, 0, h-1)

	a := t.texel(face, level, x0, y0)
	b := t.texel(face, level, x1, y0)
	c := t.texel(face, level, x0, y1)
	d := t.texel(face, level, x1, y1)
	var out [4]float32
	for i := range out {
		top := a[i] + (b[i]-a[i])*ax
		bot := c[i] + (d[i]-c[i])*ax
		out[i] = top + (bot-top)*ay
	}
	return out
}

// sampleLod blends the two levels around lod; without trilinear filtering
// the nearest level is used.
func (t *texture) sampleLod(face int, s, tc, lod float32, wrap bool) [4]float32 {
	maxLevel := float32(t.desc.Mips - 1)
	if lod < 0 {
		lod = 0
	}
	if lod > maxLevel {
		lod = maxLevel
	}
	l0 := int(lod)
	if t.filter != gfx.FilterTrilinear || float32(l0) == lod {
		return t.bilinear(face, int(lod+0.5), s, tc, wrap)
	}
	a := t.bilinear(face, l0, s, tc, wrap)
	b := t.bilinear(face, l0+1, s, tc, wrap)
	f := lod - float32(l0)
	var out [4]float32
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*f
	}
	return out
}

func (t *texture) sample2D(uv mgl32.Vec2, lod float32) [4]float32 {
	return t.sampleLod(0, uv[0], uv[1], lod, true)
}

func (t *texture) sampleCube(dir mgl32.Vec3, lod float32) [4]float32 {
	face, s, tc := cubeFace(dir)
	return t.sampleLod(face, s, tc, lod, false)
}

// cubeFace selects a face and its (s,t) coordinates using the GL cube map
// selection rules.
func cubeFace(d mgl32.Vec3) (int, float32, float32) {
	ax, ay, az := abs32(d[0]), abs32(d[1]), abs32(d[2])
	var face int
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d[0] >= 0 {
			face, sc, tc = 0, -d[2], -d[1]
		} else {
			face, sc, tc = 1, d[2], -d[1]
		}
	case ay >= az:
		ma = ay
		if d[1] >= 0 {
			face, sc, tc = 2, d[0], d[2]
		} else {
			face, sc, tc = 3, d[0], -d[2]
		}
	default:
		ma = az
		if d[2] >= 0 {
			face, sc, tc = 4, d[0], -d[1]
		} else {
			face, sc, tc = 5, -d[0], -d[1]
		}
	}
	if ma == 0 {
		return 0, 0.5, 0.5
	}
	return face, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

// downsample box-filters every face of level-1 into level.
func (t *texture) downsample(level int) {
	sw, sh := t.levelDims(level - 1)
	dw, dh := t.levelDims(level)
	ch := t.desc.Format.Channels()
	for f := range t.levels {
		src := t.levels[f][level-1]
		dst := t.levels[f][level]
		for y := 0; y < dh; y++ {
			for x := 0; x < dw; x++ {
				x0, y0 := clampInt(2*x, 0, sw-1), clampInt(2*y, 0, sh-1)
				x1, y1 := clampInt(2*x+1, 0, sw-1), clampInt(2*y+1, 0, sh-1)
				for c := 0; c < ch; c++ {
					sum := src[(y0*sw+x0)*ch+c] + src[(y0*sw+x1)*ch+c] +
						src[(y1*sw+x0)*ch+c] + src[(y1*sw+x1)*ch+c]
					dst[(y*dw+x)*ch+c] = sum / 4
				}
			}
		}
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
