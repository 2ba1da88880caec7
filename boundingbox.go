package meshdist

import (
	"math"

	"github.com/golang/geo/r3"
)

// BoundingBox is an axis-aligned interval in 3D, used both for the
// interception-region boxes of §3/§4.4 and as scratch state during BVH
// construction.
type BoundingBox struct {
	Lower r3.Vector
	Upper r3.Vector
}

// emptyBoundingBox returns a box with inverted bounds, ready to be widened
// by repeated calls to Extend / ExtendBox.
func emptyBoundingBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Lower: r3.Vector{X: inf, Y: inf, Z: inf},
		Upper: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend widens the box, if necessary, to cover pt.
func (b *BoundingBox) Extend(pt r3.Vector) {
	b.Lower.X = math.Min(b.Lower.X, pt.X)
	b.Lower.Y = math.Min(b.Lower.Y, pt.Y)
	b.Lower.Z = math.Min(b.Lower.Z, pt.Z)
	b.Upper.X = math.Max(b.Upper.X, pt.X)
	b.Upper.Y = math.Max(b.Upper.Y, pt.Y)
	b.Upper.Z = math.Max(b.Upper.Z, pt.Z)
}

// ExtendBox widens the box, if necessary, to cover other.
func (b *BoundingBox) ExtendBox(other BoundingBox) {
	b.Extend(other.Lower)
	b.Extend(other.Upper)
}

// Empty reports whether the box has never been extended (i.e. covers no point).
func (b BoundingBox) Empty() bool {
	return b.Lower.X > b.Upper.X || b.Lower.Y > b.Upper.Y || b.Lower.Z > b.Upper.Z
}

// pointToAABBDistSq is the point-to-AABB squared distance of §4.1: per axis
// delta = max(lo-q, q-hi, 0), result = sum of squares.
func pointToAABBDistSq(lower, upper, q r3.Vector) float64 {
	dx := math.Max(math.Max(lower.X-q.X, q.X-upper.X), 0)
	dy := math.Max(math.Max(lower.Y-q.Y, q.Y-upper.Y), 0)
	dz := math.Max(math.Max(lower.Z-q.Z, q.Z-upper.Z), 0)
	return dx*dx + dy*dy + dz*dz
}
