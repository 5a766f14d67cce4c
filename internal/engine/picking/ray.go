// Package picking provides ray casting and object picking utilities.
package picking

import (
	"github.com/Faultbox/n3vedit/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point Origin + Direction*t.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pointer coordinates to a world-space ray.
//
// screenX, screenY are pixel coordinates with Y growing downward,
// viewportW/H are the viewport dimensions. The direction comes from
// unprojecting two NDC depths through the inverse view-projection. The
// origin is the camera eye rather than the unprojected near point, which
// only matters when the near plane is far from the eye.
//
// ok is false for an empty viewport or a singular view-projection.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, view, proj math.Mat4, eye math.Vec3) (ray Ray, ok bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}

	invViewProj, ok := proj.Mul(view).Inverse()
	if !ok {
		return Ray{}, false
	}

	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	nearWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 0})
	farWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	dir := farWorld.Sub(nearWorld).Normalize()
	if dir == (math.Vec3{}) {
		return Ray{}, false
	}
	return Ray{Origin: eye, Direction: dir}, true
}
