// Package editor holds the editing session for a single VMesh: selection,
// dragging, camera control and the input contract used by the viewer.
package editor

import (
	"github.com/Faultbox/n3vedit/internal/engine/picking"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// SelectionState is the selection and drag state of the one mesh instance.
type SelectionState struct {
	Selected bool
	Dragging bool

	// WorldTranslation is added to the mesh's local positions when drawn.
	WorldTranslation math.Vec3

	// InitialDepth is the distance along the pick ray captured at drag start.
	InitialDepth float32
	// PreviousPointerWorld is the last pointer position on the drag plane.
	PreviousPointerWorld math.Vec3
}

// Select marks the mesh selected. Selecting twice is the same as once.
func (s *SelectionState) Select() {
	s.Selected = true
}

// Clear drops both selection and dragging. The translation is kept.
func (s *SelectionState) Clear() {
	s.Selected = false
	s.Dragging = false
}

// StopDrag ends dragging and keeps the selection.
func (s *SelectionState) StopDrag() {
	s.Dragging = false
}

// Reset returns the state to idle at the origin.
func (s *SelectionState) Reset() {
	*s = SelectionState{}
}

// meshTarget adapts the session mesh to the picker.
type meshTarget struct {
	bounds      math.Bounds
	radius      float32
	translation math.Vec3
	empty       bool
}

func (m meshTarget) BoundingSphere() (picking.Sphere, bool) {
	if m.empty {
		return picking.Sphere{}, false
	}
	return picking.Sphere{
		Center: m.bounds.Center().Add(m.translation),
		Radius: m.radius,
	}, true
}
