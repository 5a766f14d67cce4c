package debug

import "github.com/chewxy/math32"

// Ground grid defaults.
const (
	DefaultGridSize          = 2000
	DefaultGridSubdivisions  = 100
	DefaultGridMajorInterval = 10
)

// Grid line colors.
var (
	GridMinorColor = [3]float32{80.0 / 255, 80.0 / 255, 80.0 / 255}
	GridMajorColor = [3]float32{100.0 / 255, 100.0 / 255, 100.0 / 255}
	GridAxisColor  = [3]float32{150.0 / 255, 150.0 / 255, 150.0 / 255}
)

// GenerateGridLines returns a square grid on the XZ plane centered on the
// origin. Lines through zero use the axis color and every majorInterval-th
// line the major color.
func GenerateGridLines(size float32, subdivisions, majorInterval int) []LineVertex {
	if subdivisions <= 0 || size <= 0 {
		return nil
	}

	half := size / 2
	step := size / float32(subdivisions)

	colorFor := func(i int, coord float32) [3]float32 {
		switch {
		case math32.Abs(coord) < 0.001:
			return GridAxisColor
		case majorInterval > 0 && i%majorInterval == 0:
			return GridMajorColor
		default:
			return GridMinorColor
		}
	}

	vertices := make([]LineVertex, 0, (subdivisions+1)*4)
	// Lines along Z at fixed X
	for i := 0; i <= subdivisions; i++ {
		x := -half + float32(i)*step
		c := colorFor(i, x)
		vertices = append(vertices,
			LineVertex{x, 0, -half, c[0], c[1], c[2]},
			LineVertex{x, 0, half, c[0], c[1], c[2]},
		)
	}
	// Lines along X at fixed Z
	for i := 0; i <= subdivisions; i++ {
		z := -half + float32(i)*step
		c := colorFor(i, z)
		vertices = append(vertices,
			LineVertex{-half, 0, z, c[0], c[1], c[2]},
			LineVertex{half, 0, z, c[0], c[1], c[2]},
		)
	}
	return vertices
}
