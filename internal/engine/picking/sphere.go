package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/n3vedit/pkg/math"
)

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// IntersectSphere tests the ray against s. t is the distance to the first
// surface crossing, or 0 when the origin is already inside the sphere.
// The direction must be normalized.
func (r Ray) IntersectSphere(s Sphere) (t float32, hit bool) {
	m := r.Origin.Sub(s.Center)
	b := m.Dot(r.Direction)
	c := m.Dot(m) - s.Radius*s.Radius

	// Origin outside and pointing away.
	if c > 0 && b > 0 {
		return 0, false
	}

	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	t = -b - math32.Sqrt(disc)
	if t < 0 {
		t = 0
	}
	return t, true
}
