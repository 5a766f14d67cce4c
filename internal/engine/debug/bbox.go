// Package debug builds line geometry for viewport decorations and saves
// viewport screenshots.
package debug

import "github.com/Faultbox/n3vedit/pkg/math"

// LineVertex is a colored line endpoint.
type LineVertex struct {
	X, Y, Z float32
	R, G, B float32
}

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// SelectionColor is the color of the selection box.
var SelectionColor = [3]float32{1, 0.85, 0.2}

// BoundsWireframe returns the 12 box edges as line endpoints, grown by
// padding on every side. Empty bounds give no lines.
func BoundsWireframe(b math.Bounds, padding float32, color [3]float32) []LineVertex {
	if b.IsEmpty() {
		return nil
	}

	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(x, y, z bool) LineVertex {
		v := LineVertex{X: lo.X, Y: lo.Y, Z: lo.Z, R: color[0], G: color[1], B: color[2]}
		if x {
			v.X = hi.X
		}
		if y {
			v.Y = hi.Y
		}
		if z {
			v.Z = hi.Z
		}
		return v
	}

	out := make([]LineVertex, 0, BBoxWireframeVertexCount)
	for _, y := range []bool{false, true} {
		// Bottom and top faces
		out = append(out,
			corner(false, y, false), corner(true, y, false),
			corner(true, y, false), corner(true, y, true),
			corner(true, y, true), corner(false, y, true),
			corner(false, y, true), corner(false, y, false),
		)
	}
	// Vertical edges
	for _, xz := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		out = append(out, corner(xz[0], false, xz[1]), corner(xz[0], true, xz[1]))
	}
	return out
}
