// Package camera provides the orbit camera used to frame and inspect a mesh.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/n3vedit/pkg/math"
)

// Orbit camera limits.
const (
	MinRadius = 0.1
	MaxRadius = 1000.0

	// MaxPitch keeps the camera just short of the poles so LookAt never
	// degenerates against the up vector.
	MaxPitch = 0.475 * math32.Pi

	FrameMinRadius = 5.0
	FrameMaxRadius = 500.0
	FrameMargin    = 1.5

	// PanFactor scales pointer deltas by the current radius.
	PanFactor = 0.001
)

// Lens holds the projection parameters. The camera does not own the
// viewport, so the aspect ratio is passed in when the matrix is built.
type Lens struct {
	FovY float32 // radians
	Near float32
	Far  float32
}

// DefaultLens returns a 45 degree lens with the editor's clip planes.
func DefaultLens() Lens {
	return Lens{FovY: math32.Pi / 4, Near: 0.01, Far: 1000}
}

// Projection returns the perspective matrix for the given aspect ratio.
func (l Lens) Projection(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(l.FovY, aspect, l.Near, l.Far)
}

// OrbitCamera orbits a target point. The eye is always derived from
// target, radius, yaw and pitch; it is never stored.
type OrbitCamera struct {
	Target math.Vec3
	Up     math.Vec3

	Radius float32
	Yaw    float32 // radians
	Pitch  float32 // radians

	ZoomSpeed    float32
	RotateSpeedX float32
	RotateSpeedY float32

	Lens Lens
}

// NewOrbitCamera returns a camera ten units in front of the origin.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Up:           math.Up,
		Radius:       10,
		ZoomSpeed:    0.1,
		RotateSpeedX: 0.01,
		RotateSpeedY: 0.01,
		Lens:         DefaultLens(),
	}
}

// Eye returns the camera position: target + RotateRollPitchYaw(pitch, yaw) * (0, 0, -radius).
func (c *OrbitCamera) Eye() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	offset := math.Vec3{
		X: -c.Radius * cp * sy,
		Y: c.Radius * sp,
		Z: -c.Radius * cp * cy,
	}
	return c.Target.Add(offset)
}

// Forward returns the unit view direction from the eye to the target.
func (c *OrbitCamera) Forward() math.Vec3 {
	return c.Target.Sub(c.Eye()).Normalize()
}

// ViewMatrix returns the look-at matrix for the current eye.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Eye(), c.Target, c.Up)
}

// ProjectionMatrix returns the lens projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return c.Lens.Projection(aspect)
}

// Zoom moves the eye toward the target for positive delta.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Radius = clamp(c.Radius-delta*c.ZoomSpeed, MinRadius, MaxRadius)
}

// Rotate applies pointer deltas to yaw and pitch.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Yaw += dx * c.RotateSpeedX
	c.Pitch = clamp(c.Pitch+dy*c.RotateSpeedY, -MaxPitch, MaxPitch)
}

// Pan slides target and eye by the same camera-relative offset. The step
// grows with the radius.
func (c *OrbitCamera) Pan(dx, dy float32) {
	speed := PanFactor * c.Radius

	forward := c.Forward()
	right := c.Up.Cross(forward).Normalize()
	actualUp := forward.Cross(right).Normalize()

	delta := right.Scale(-dx * speed).Add(actualUp.Scale(dy * speed))
	c.Target = c.Target.Add(delta)
}

// AutoFrame centers the camera on a bounding sphere and backs off far
// enough to fit it in the given field of view with some margin.
func (c *OrbitCamera) AutoFrame(center math.Vec3, radius, fovY float32) {
	c.Target = center
	c.Radius = clamp(radius/math32.Tan(fovY*0.5)*FrameMargin, FrameMinRadius, FrameMaxRadius)
}

// SetTargetY moves the orbit point vertically.
func (c *OrbitCamera) SetTargetY(y float32) {
	c.Target.Y = y
}

// TargetY returns the orbit point height.
func (c *OrbitCamera) TargetY() float32 {
	return c.Target.Y
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
