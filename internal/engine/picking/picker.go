package picking

// Target is anything that can be picked by its bounding sphere. ok is false
// for targets with no geometry, which are never hit.
type Target interface {
	BoundingSphere() (s Sphere, ok bool)
}

// Hit is the result of a successful pick.
type Hit struct {
	Index int     // index into the targets slice
	T     float32 // distance along the ray
}

// Pick returns the nearest target hit by the ray.
func Pick(ray Ray, targets []Target) (Hit, bool) {
	best := Hit{Index: -1}
	for i, target := range targets {
		sphere, ok := target.BoundingSphere()
		if !ok {
			continue
		}
		t, hit := ray.IntersectSphere(sphere)
		if !hit {
			continue
		}
		if best.Index < 0 || t < best.T {
			best = Hit{Index: i, T: t}
		}
	}
	return best, best.Index >= 0
}
