package meshdist

import (
	"math"

	"github.com/golang/geo/r3"
)

// PrimitiveKind classifies which kind of mesh primitive a Result's
// primitive_index refers to (§4.6/§6).
type PrimitiveKind int

const (
	Vertex PrimitiveKind = iota
	Edge
	Face
)

func (k PrimitiveKind) String() string {
	switch k {
	case Vertex:
		return "Vertex"
	case Edge:
		return "Edge"
	case Face:
		return "Face"
	default:
		return "Unknown"
	}
}

// Result is the §6 query return value. PrimitiveIndex is scoped to Kind
// (0..NumVertices, 0..NumEdges, or 0..NumFaces respectively), not the
// globally encoded index used internally by PackedEdge/PackedFace.
type Result struct {
	DistanceSquared float64
	PrimitiveIndex  uint32
	Kind            PrimitiveKind
	ClosestPoint    r3.Vector
}

// assembleResult is §4.6 ResultAssembly: decodes the globally encoded
// primitive index (vertex range, then edge range offset by |V|, then face
// range offset by |V|+|E|) into a local index and kind, and computes the
// closest point for that primitive.
func assembleResult(mg *MeshGeometry, q r3.Vector, globalIdx uint32, distSq float64) Result {
	numV := uint32(mg.NumVertices())
	numE := uint32(mg.NumEdges())

	switch {
	case globalIdx < numV:
		return Result{
			DistanceSquared: distSq,
			PrimitiveIndex:  globalIdx,
			Kind:            Vertex,
			ClosestPoint:    mg.positions[globalIdx],
		}

	case globalIdx < numV+numE:
		localIdx := globalIdx - numV
		e := mg.edges[localIdx]
		a, b := mg.positions[e.v0], mg.positions[e.v1]
		return Result{
			DistanceSquared: distSq,
			PrimitiveIndex:  localIdx,
			Kind:            Edge,
			ClosestPoint:    projectOntoInfiniteLine(a, b, q),
		}

	default:
		localIdx := globalIdx - numV - numE
		face := mg.faces[localIdx]
		return Result{
			DistanceSquared: distSq,
			PrimitiveIndex:  localIdx,
			Kind:            Face,
			ClosestPoint:    face.geom.projectToPlane(q),
		}
	}
}

// projectOntoInfiniteLine projects q onto the infinite line through a,b —
// unclamped, unlike closestPointSegmentPoint, per §4.6.
func projectOntoInfiniteLine(a, b, q r3.Vector) r3.Vector {
	ab := b.Sub(a)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return a
	}
	t := q.Sub(a).Dot(ab) / denom
	return a.Add(ab.Mul(t))
}

// emptyMeshResult is the §7 sentinel returned by a query against a
// zero-vertex structure.
func emptyMeshResult() Result {
	return Result{
		DistanceSquared: math.Inf(1),
		PrimitiveIndex:  0,
		Kind:            Vertex,
		ClosestPoint:    r3.Vector{},
	}
}
