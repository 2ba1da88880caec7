package meshdist

import (
	"github.com/golang/geo/r3"
)

// floatEpsilon is the default tolerance for near-zero comparisons across the
// package (degenerate-triangle detection, zero-length edges, plane normalization).
const floatEpsilon = 1e-9

// Plane is a half-space boundary with a unit normal, stored in Hessian
// normal form so Eval yields the signed distance from the plane directly.
type Plane struct {
	Normal r3.Vector
	Offset float64 // such that Normal.Dot(p) + Offset == signed distance for p on the plane's normal side
}

// newPlaneFromPoint builds the plane through pt with the given (not
// necessarily unit) normal. Returns ok=false if normal is degenerate.
func newPlaneFromPoint(pt, normal r3.Vector) (Plane, bool) {
	n := normal.Normalize()
	if n.Norm2() < floatEpsilon {
		return Plane{}, false
	}
	return Plane{Normal: n, Offset: -n.Dot(pt)}, true
}

// Eval returns the signed distance of p from the plane: positive on the side
// the normal points to, negative on the other side.
func (p Plane) Eval(pt r3.Vector) float64 {
	return p.Normal.Dot(pt) + p.Offset
}

// Negate returns the plane with the opposite orientation (same geometric
// plane, half-space flipped).
func (p Plane) Negate() Plane {
	return Plane{Normal: p.Normal.Mul(-1), Offset: -p.Offset}
}

// bisectorPlane returns the plane equidistant between a and b, oriented so
// that points closer to a evaluate positive (Eval(a) > 0, Eval(b) < 0).
func bisectorPlane(a, b r3.Vector) (Plane, bool) {
	mid := a.Add(b).Mul(0.5)
	n := a.Sub(b)
	if n.Norm2() < floatEpsilon*floatEpsilon {
		return Plane{}, false
	}
	n = n.Normalize()
	return Plane{Normal: n, Offset: -n.Dot(mid)}, true
}
