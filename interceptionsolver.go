package meshdist

import (
	"go.uber.org/zap"

	"github.com/golang/geo/r3"
)

// interceptionEntry's vertex-keyed counterpart before transposition: one
// (vertex, box) pair recorded while walking outward from a single
// edge's or face's seed vertices (§4.4).
type vertexBox struct {
	vertex int
	box    BoundingBox
}

// solveInterceptions is the §4.4 InterceptionSolver: two data-parallel BFS
// passes (one per edge, one per face) over mesh-vertex adjacency, followed
// by a single-threaded transpose into per-vertex lists. The parallel
// passes write only to their own primitive's output slot (§5); the
// transpose that follows runs after the parallelFor join barrier, so it
// never races.
func solveInterceptions(
	mg *MeshGeometry, cb *CellBuilder, relTol float64, parallelism int, logger *zap.SugaredLogger,
) (edgeByVertex, faceByVertex [][]interceptionEntry) {
	numV := mg.NumVertices()
	numE := mg.NumEdges()
	numF := mg.NumFaces()

	perEdge := make([][]vertexBox, numE)
	perFace := make([][]vertexBox, numF)

	parallelFor(0, numE, parallelism, func(e int) {
		perEdge[e] = bfsEdgeInterception(mg, cb, uint32(e), relTol)
	})
	if logger != nil {
		logger.Debugf("interception edge pass done: %d edges", numE)
	}

	parallelFor(0, numF, parallelism, func(f int) {
		perFace[f] = bfsFaceInterception(mg, cb, uint32(f), relTol)
	})
	if logger != nil {
		logger.Debugf("interception face pass done: %d faces", numF)
	}

	edgeByVertex = make([][]interceptionEntry, numV)
	for e, list := range perEdge {
		for _, vb := range list {
			edgeByVertex[vb.vertex] = append(edgeByVertex[vb.vertex], interceptionEntry{primitiveIndex: uint32(e), box: vb.box})
		}
	}
	faceByVertex = make([][]interceptionEntry, numV)
	for f, list := range perFace {
		for _, vb := range list {
			faceByVertex[vb.vertex] = append(faceByVertex[vb.vertex], interceptionEntry{primitiveIndex: uint32(f), box: vb.box})
		}
	}
	return edgeByVertex, faceByVertex
}

func bfsEdgeInterception(mg *MeshGeometry, cb *CellBuilder, e uint32, relTol float64) []vertexBox {
	edge := mg.edges[e]
	a, b := mg.positions[edge.v0], mg.positions[edge.v1]
	distFn := func(p r3.Vector) float64 { return distSqToInfiniteLine(a, b, p) }
	planes := append([]Plane{}, edge.planes[:edge.numPlanes]...)
	seeds := []int{int(edge.v0), int(edge.v1)}
	return bfsIntercept(mg, cb, seeds, planes, distFn, relTol)
}

func bfsFaceInterception(mg *MeshGeometry, cb *CellBuilder, f uint32, relTol float64) []vertexBox {
	face := mg.faces[f]
	distFn := func(p r3.Vector) float64 { return distSqToPlane(face.geom.facePlane, p) }
	planes := append([]Plane{}, face.geom.edgePlanes[:]...)
	seeds := []int{int(face.v0), int(face.v1), int(face.v2)}
	return bfsIntercept(mg, cb, seeds, planes, distFn, relTol)
}

// bfsIntercept is the BFS shared by both passes: seeded by the primitive's
// incident vertices, it clips a private copy of each dequeued vertex's
// Laguerre cell by the primitive's clipping planes and only continues
// outward through vertices whose clipped cell actually intercepts the
// primitive (§4.4).
func bfsIntercept(
	mg *MeshGeometry, cb *CellBuilder, seeds []int, planes []Plane, distFn func(r3.Vector) float64, relTol float64,
) []vertexBox {
	visited := make(map[int]bool, len(seeds)*4)
	queue := append([]int{}, seeds...)
	for _, s := range seeds {
		visited[s] = true
	}

	var results []vertexBox
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		lc := cb.cells[v]
		if lc == nil {
			continue
		}
		cell := lc.cell.clone()
		for _, p := range planes {
			cell.clipByPlane(p)
		}
		cell.computeGeometry()
		if cell.empty() {
			continue
		}

		box, found := interceptionTest(cell, mg.positions[v], distFn, relTol)
		if !found {
			continue
		}
		results = append(results, vertexBox{vertex: v, box: box})

		for _, nb := range cb.neighbors[v] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return results
}

// interceptionTest implements the §4.4 core predicate: walking the ring of
// boundary positions around every cell vertex, classifying each by
// whether the primitive beats the site there, and extending box with every
// "closer to primitive" position plus every ring-edge crossing found by
// bisection. Returns (box, true) iff at least one ring position was closer
// to the primitive than to the site.
func interceptionTest(cell *convexCell, site r3.Vector, distFn func(r3.Vector) float64, relTol float64) (BoundingBox, bool) {
	box := emptyBoundingBox()
	found := false

	for cv := 0; cv < cell.numVertices(); cv++ {
		ring := cell.ringAround(cv)
		n := len(ring)
		if n == 0 {
			continue
		}
		regions := make([]int, n)
		for i, p := range ring {
			regions[i] = regionSign(distFn, site, p)
			if regions[i] < 0 {
				box.Extend(p)
				found = true
			}
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n // closes the ring: last->first on i==n-1
			if regions[i] == -1 && regions[j] == 1 {
				crossing := bisectRingCrossing(distFn, site, ring[i], ring[j], relTol)
				box.Extend(crossing)
			}
		}
	}
	return box, found
}

// regionSign is -1 if p is strictly closer to the primitive than to site,
// +1 otherwise (ties count as "not closer", §4.4).
func regionSign(distFn func(r3.Vector) float64, site, p r3.Vector) int {
	if distFn(p)-site.Sub(p).Norm2() < 0 {
		return -1
	}
	return 1
}

// bisectRingCrossing locates the region-sign crossing on segment [a,b]
// (a region -1, b region +1) by bisection to a relative tolerance of the
// segment length, running at least one iteration (§4.4).
func bisectRingCrossing(distFn func(r3.Vector) float64, site, a, b r3.Vector, relTol float64) r3.Vector {
	segLen := b.Sub(a).Norm()
	if segLen < floatEpsilon {
		return a
	}
	g := func(t float64) float64 {
		p := a.Add(b.Sub(a).Mul(t))
		return distFn(p) - site.Sub(p).Norm2()
	}

	lo, hi := 0.0, 1.0
	const maxIterations = 60
	for iter := 0; iter < maxIterations; iter++ {
		mid := (lo + hi) / 2
		if g(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
		if (hi-lo)*segLen <= relTol*segLen {
			break
		}
	}
	t := (lo + hi) / 2
	return a.Add(b.Sub(a).Mul(t))
}
