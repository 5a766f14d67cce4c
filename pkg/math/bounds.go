package math

import "github.com/chewxy/math32"

// Bounds is an axis-aligned box folded from a point set.
//
// An empty Bounds keeps its +Inf/-Inf seeds; Center and Radius report zero
// for it, so callers must check the point count before trusting Min/Max.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// EmptyBounds returns bounds seeded for a min/max fold.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoundsOf folds every point into a fresh Bounds.
func BoundsOf(points []Vec3) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// IsEmpty reports whether no point has been folded in.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns (Min+Max)/2.
func (b Bounds) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent per axis.
func (b Bounds) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Radius returns half the box diagonal. This circumscribes the box, it is
// not the tightest sphere around the points.
func (b Bounds) Radius() float32 {
	return b.Size().Length() / 2
}

// Translate returns the box moved by offset.
func (b Bounds) Translate(offset Vec3) Bounds {
	if b.IsEmpty() {
		return b
	}
	return Bounds{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Contains reports whether p lies inside the box, borders included.
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
