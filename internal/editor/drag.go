package editor

import (
	"github.com/Faultbox/n3vedit/internal/engine/picking"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// CaptureDepth starts a drag. The depth is the projection of anchor onto the
// ray direction, measured from the ray origin, so the drag plane passes
// through anchor perpendicular to the ray. It does nothing unless the mesh
// is selected.
func (s *SelectionState) CaptureDepth(ray picking.Ray, anchor math.Vec3) bool {
	if !s.Selected {
		return false
	}

	t := anchor.Sub(ray.Origin).Dot(ray.Direction)
	s.InitialDepth = t
	s.PreviousPointerWorld = ray.At(t)
	s.Dragging = true
	return true
}

// Drag moves the translation by how far the pointer moved on the drag plane
// and returns that delta. moved is false when no drag is active.
func (s *SelectionState) Drag(ray picking.Ray) (delta math.Vec3, moved bool) {
	if !s.Selected || !s.Dragging {
		return math.Vec3{}, false
	}

	p := ray.At(s.InitialDepth)
	delta = p.Sub(s.PreviousPointerWorld)
	s.WorldTranslation = s.WorldTranslation.Add(delta)
	s.PreviousPointerWorld = p
	return delta, true
}
