package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitSpeed is the default orbital angular speed in radians per second.
const OrbitSpeed = 0.5

// OrbitCamera circles a target point at a fixed distance and pitch.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	// Fovy is the vertical field of view in degrees.
	Fovy   float32
	Aspect float32
	Near   float32
	Far    float32

	// Speed is the yaw rate applied by Update.
	Speed float32
}

// NewOrbitCamera places the camera at position looking at target and derives
// the orbit parameters from that placement.
func NewOrbitCamera(position, target mgl32.Vec3, fovy, aspect float32) *OrbitCamera {
	offset := position.Sub(target)
	dist := offset.Len()
	c := &OrbitCamera{
		Target:   target,
		Distance: dist,
		Fovy:     fovy,
		Aspect:   aspect,
		Near:     0.01,
		Far:      1000,
		Speed:    OrbitSpeed,
	}
	if dist > 0 {
		c.Yaw = float32(math.Atan2(float64(offset[0]), float64(offset[2])))
		c.Pitch = float32(math.Asin(float64(offset[1] / dist)))
	}
	return c
}

// Update advances the orbit by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	c.Yaw += c.Speed * dt
	if c.Yaw > 2*math.Pi {
		c.Yaw -= 2 * math.Pi
	}
}

// Orbit nudges yaw and pitch; pitch is kept short of the poles.
func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch = mgl32.Clamp(c.Pitch+deltaPitch, -1.5, 1.5)
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance += delta
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	cosPitch := float32(math.Cos(float64(c.Pitch)))
	sinPitch := float32(math.Sin(float64(c.Pitch)))
	cosYaw := float32(math.Cos(float64(c.Yaw)))
	sinYaw := float32(math.Sin(float64(c.Yaw)))

	return c.Target.Add(mgl32.Vec3{
		c.Distance * cosPitch * sinYaw,
		c.Distance * sinPitch,
		c.Distance * cosPitch * cosYaw,
	})
}

func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), c.Aspect, c.Near, c.Far)
}
