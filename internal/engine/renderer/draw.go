package renderer

import "github.com/Faultbox/n3vedit/pkg/formats"

// DrawKind selects how the mesh is submitted.
type DrawKind int

const (
	DrawNothing DrawKind = iota
	DrawElements
	DrawArrays
)

// DrawPlan is the draw call derived from a mesh.
type DrawPlan struct {
	Kind  DrawKind
	Count int32
}

// PlanDraw decides how to draw m. Indexed drawing needs every index to
// address a vertex; otherwise the vertices are drawn as an unindexed
// triangle list.
func PlanDraw(m *formats.VMesh) DrawPlan {
	if m == nil || m.VertexCount() == 0 {
		return DrawPlan{Kind: DrawNothing}
	}
	if m.IndexCount() > 0 && m.IndicesInRange() {
		return DrawPlan{Kind: DrawElements, Count: int32(m.IndexCount())}
	}
	return DrawPlan{Kind: DrawArrays, Count: int32(m.VertexCount())}
}
