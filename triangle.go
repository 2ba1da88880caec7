package meshdist

import (
	"github.com/golang/geo/r3"
)

// triangleGeom holds the evaluated geometry of a mesh face: its plane, the
// three inward edge-clipping planes of §4.2, and the raw vertex positions
// needed for projection and centroid computation.
//
// This mirrors spatialmath.Triangle (same cross-product normal, same
// closest-point-on-triangle machinery) generalized to also carry the
// clipping planes InterceptionSolver needs.
type triangleGeom struct {
	p0, p1, p2 r3.Vector
	facePlane  Plane
	// edgePlanes[i] is the inward clipping plane for the edge opposite
	// vertex i, i.e. edgePlanes[0] clips edge (p1,p2), edgePlanes[1] clips
	// edge (p2,p0), edgePlanes[2] clips edge (p0,p1).
	edgePlanes [3]Plane
}

// newTriangleGeom computes a face's plane and inward edge-clipping planes.
// Returns ok=false for a degenerate (zero-area) triangle.
func newTriangleGeom(p0, p1, p2 r3.Vector) (triangleGeom, bool) {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Norm2() < floatEpsilon*floatEpsilon {
		return triangleGeom{}, false
	}
	facePlane, ok := newPlaneFromPoint(p0, n)
	if !ok {
		return triangleGeom{}, false
	}
	unitNormal := facePlane.Normal

	pts := [3]r3.Vector{p0, p1, p2}
	var edgePlanes [3]Plane
	for i := 0; i < 3; i++ {
		// Edge opposite vertex i runs from pts[i+1] to pts[i+2] (indices mod
		// 3); inward normal is normalize((v_{i+1}-v_{i-1}) x n) per §4.2.
		vNext := pts[(i+1)%3]
		vPrev := pts[(i+2)%3]
		edgeNormal := vNext.Sub(vPrev).Cross(unitNormal)
		p, ok := newPlaneFromPoint(vNext, edgeNormal)
		if !ok {
			return triangleGeom{}, false
		}
		// Orient inward: the opposite vertex (pts[i]) must be on the
		// positive side.
		if p.Eval(pts[i]) < 0 {
			p = p.Negate()
		}
		edgePlanes[i] = p
	}
	return triangleGeom{p0: p0, p1: p1, p2: p2, facePlane: facePlane, edgePlanes: edgePlanes}, true
}

// centroid returns the triangle's centroid.
func (t triangleGeom) centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1.0 / 3.0)
}

// projectToPlane returns q projected orthogonally onto the face's plane.
func (t triangleGeom) projectToPlane(q r3.Vector) r3.Vector {
	d := t.facePlane.Eval(q)
	return q.Sub(t.facePlane.Normal.Mul(d))
}

// closestPointSegmentPoint returns the closest point on segment [a,b] to pt,
// and the parametric t in [0,1] it corresponds to. Ported from
// spatialmath's package-level helper of the same behavior.
func closestPointSegmentPoint(a, b, pt r3.Vector) (r3.Vector, float64) {
	ab := b.Sub(a)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return a, 0
	}
	t := pt.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t)), t
}

// closestPointOnTriangle returns the closest point on triangle (p0,p1,p2) to
// pt, following spatialmath.Triangle.ClosestPointToPoint: first test whether
// the orthogonal projection lands inside the triangle (barycentric
// parametrization), falling back to the three edges otherwise.
func closestPointOnTriangle(p0, p1, p2, pt r3.Vector) r3.Vector {
	e0 := p1.Sub(p0)
	e1 := p2.Sub(p0)
	a := e0.Norm2()
	b := e0.Dot(e1)
	c := e1.Norm2()
	d := pt.Sub(p0)
	det := a*c - b*b
	if det > floatEpsilon {
		u := (c*e0.Dot(d) - b*e1.Dot(d)) / det
		v := (-b*e0.Dot(d) + a*e1.Dot(d)) / det
		eps := 1e-6
		if u >= -eps && u <= 1+eps && v >= -eps && v <= 1+eps && u+v <= 1+eps {
			return p0.Add(e0.Mul(u)).Add(e1.Mul(v))
		}
	}

	best := closestPointSegmentPointOnly(p0, p1, pt)
	bestDist := pt.Sub(best).Norm2()

	p2pt := closestPointSegmentPointOnly(p1, p2, pt)
	if d := pt.Sub(p2pt).Norm2(); d < bestDist {
		best, bestDist = p2pt, d
	}

	p3pt := closestPointSegmentPointOnly(p2, p0, pt)
	if d := pt.Sub(p3pt).Norm2(); d < bestDist {
		best = p3pt
	}
	return best
}

func closestPointSegmentPointOnly(a, b, pt r3.Vector) r3.Vector {
	p, _ := closestPointSegmentPoint(a, b, pt)
	return p
}

// distSqToSegment returns the squared distance from pt to the closed
// segment [a,b].
func distSqToSegment(a, b, pt r3.Vector) float64 {
	p, _ := closestPointSegmentPoint(a, b, pt)
	return pt.Sub(p).Norm2()
}

// distSqToInfiniteLine returns the squared distance from pt to the infinite
// line through a and b, used by InterceptionSolver's edge pass (§4.4) where
// the feature region, not the segment, determines distance.
func distSqToInfiniteLine(a, b, pt r3.Vector) float64 {
	ab := b.Sub(a)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return pt.Sub(a).Norm2()
	}
	t := pt.Sub(a).Dot(ab) / denom
	proj := a.Add(ab.Mul(t))
	return pt.Sub(proj).Norm2()
}

// distSqToPlane returns the squared distance from pt to the given plane's
// infinite extent (used by InterceptionSolver's face pass, §4.4).
func distSqToPlane(p Plane, pt r3.Vector) float64 {
	d := p.Eval(pt)
	return d * d
}
