package soft

import (
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

// Kernels for the environment bake programs. Each one follows its GLSL
// counterpart in the shaders package line for line.
func builtinKernels() map[string]Kernel {
	return map[string]Kernel{
		"cubemap":    equirectKernel,
		"irradiance": irradianceKernel,
		"prefilter":  prefilterKernel,
		"brdf":       brdfKernel,
	}
}

const (
	invTwoPi = 0.1591
	invPi    = 0.3183
)

func equirectUV(v mgl32.Vec3) mgl32.Vec2 {
	u := float32(math.Atan2(float64(v[2]), float64(v[0])))*invTwoPi + 0.5
	t := 0.5 - float32(math.Asin(float64(clamp32(v[1], -1, 1))))*invPi
	return mgl32.Vec2{u, t}
}

func equirectKernel(env *Env, frag Fragment) [4]float32 {
	c := env.Texture2D("equirectangularMap", equirectUV(frag.Dir))
	return [4]float32{c[0], c[1], c[2], 1}
}

func tangentFrame(n, upHint mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	right := upHint.Cross(n).Normalize()
	up := n.Cross(right).Normalize()
	return right, up
}

func irradianceKernel(env *Env, frag Fragment) [4]float32 {
	n := frag.Dir
	delta := env.Float("sampleDelta")
	if delta <= 0 {
		delta = 0.025
	}
	hint := mgl32.Vec3{0, 1, 0}
	if abs32(n[1]) >= 0.999 {
		hint = mgl32.Vec3{0, 0, 1}
	}
	right, up := tangentFrame(n, hint)

	var sum mgl32.Vec3
	var count float32
	for phi := float32(0); phi < 2*math.Pi; phi += delta {
		sp, cp := sincos(phi)
		for theta := float32(0); theta < 0.5*math.Pi; theta += delta {
			st, ct := sincos(theta)
			ts := mgl32.Vec3{st * cp, st * sp, ct}
			dir := right.Mul(ts[0]).Add(up.Mul(ts[1])).Add(n.Mul(ts[2]))
			c := env.TextureCube("environmentMap", dir, 0)
			w := ct * st
			sum = sum.Add(mgl32.Vec3{c[0], c[1], c[2]}.Mul(w))
			count++
		}
	}
	sum = sum.Mul(math.Pi / count)
	return [4]float32{sum[0], sum[1], sum[2], 1}
}

func prefilterKernel(env *Env, frag Fragment) [4]float32 {
	n := frag.Dir
	v := n
	roughness := env.Float("roughness")
	samples := env.Int("sampleCount")
	if samples <= 0 {
		samples = 1024
	}
	resolution := env.Float("resolution")
	if resolution <= 0 {
		resolution = 512
	}
	saTexel := 4 * math.Pi / (6 * resolution * resolution)

	var sum mgl32.Vec3
	var weight float32
	for i := 0; i < samples; i++ {
		xi := hammersley(uint32(i), uint32(samples))
		h := importanceSampleGGX(xi, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()
		nDotL := n.Dot(l)
		if nDotL <= 0 {
			continue
		}
		nDotH := max32(n.Dot(h), 0)
		hDotV := max32(h.Dot(v), 0)
		d := distributionGGX(nDotH, roughness)
		pdf := d*nDotH/(4*hDotV) + 0.0001
		saSample := 1 / (float32(samples)*pdf + 0.0001)
		var lod float32
		if roughness > 0 {
			lod = 0.5 * float32(math.Log2(float64(saSample/saTexel)))
		}
		c := env.TextureCube("environmentMap", l, lod)
		sum = sum.Add(mgl32.Vec3{c[0], c[1], c[2]}.Mul(nDotL))
		weight += nDotL
	}
	if weight > 0 {
		sum = sum.Mul(1 / weight)
	}
	return [4]float32{sum[0], sum[1], sum[2], 1}
}

func brdfKernel(env *Env, frag Fragment) [4]float32 {
	samples := env.Int("sampleCount")
	if samples <= 0 {
		samples = 1024
	}
	a, b := integrateBRDF(frag.UV[0], frag.UV[1], samples)
	return [4]float32{a, b, 0, 1}
}

// integrateBRDF returns the split-sum scale and bias for one (NdotV, roughness).
func integrateBRDF(nDotV, roughness float32, samples int) (float32, float32) {
	v := mgl32.Vec3{float32(math.Sqrt(float64(1 - nDotV*nDotV))), 0, nDotV}
	n := mgl32.Vec3{0, 0, 1}

	var a, b float32
	for i := 0; i < samples; i++ {
		xi := hammersley(uint32(i), uint32(samples))
		h := importanceSampleGGX(xi, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := max32(l[2], 0)
		nDotH := max32(h[2], 0)
		vDotH := max32(v.Dot(h), 0)
		if nDotL <= 0 {
			continue
		}
		g := geometrySmith(nDotV, nDotL, roughness)
		gVis := g * vDotH / (nDotH * nDotV)
		fc := float32(math.Pow(float64(1-vDotH), 5))
		a += (1 - fc) * gVis
		b += fc * gVis
	}
	return a / float32(samples), b / float32(samples)
}

// hammersley returns point i of an n-point low-discrepancy sequence.
func hammersley(i, n uint32) mgl32.Vec2 {
	return mgl32.Vec2{float32(i) / float32(n), float32(bits.Reverse32(i)) * 2.3283064365386963e-10}
}

func importanceSampleGGX(xi mgl32.Vec2, n mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness
	phi := 2 * math.Pi * xi[0]
	cosTheta := float32(math.Sqrt(float64((1 - xi[1]) / (1 + (a*a-1)*xi[1]))))
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
	sp, cp := sincos(phi)
	h := mgl32.Vec3{cp * sinTheta, sp * sinTheta, cosTheta}

	up := mgl32.Vec3{1, 0, 0}
	if abs32(n[2]) < 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)
	return tangent.Mul(h[0]).Add(bitangent.Mul(h[1])).Add(n.Mul(h[2])).Normalize()
}

func distributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

func geometrySchlickGGX(nDotV, roughness float32) float32 {
	k := roughness * roughness / 2
	return nDotV / (nDotV*(1-k) + k)
}

func geometrySmith(nDotV, nDotL, roughness float32) float32 {
	return geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness)
}

func sincos(x float32) (float32, float32) {
	s, c := math.Sincos(float64(x))
	return float32(s), float32(c)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
