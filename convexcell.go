package meshdist

import (
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

// convexCell is the §1/§3 "external convex-cell primitive" collaborator:
// a convex polytope represented as a half-space list, with vertex
// enumeration standing in for the assumed clip/emptiness/boundary-traversal
// interface. See DESIGN.md for why this is implemented directly rather than
// wired to a third-party polytope library.
type convexCell struct {
	planes []Plane

	vertices     []r3.Vector
	activePlanes []bool
	// ring[v] is the cyclic sequence of neighboring cell-vertex positions
	// around vertices[v] — the "boundary triangle fan" of §3/§4.3: walking
	// it in order visits cell.triangle_point(t) for every boundary triangle
	// incident to that cell vertex.
	ring [][]r3.Vector

	// boundaryTris backs Volume(): the same hull triangulation ring is built
	// from, kept around for the tetrahedron-fan decomposition.
	boundaryTris [][3]int
}

// newBoxCell initializes a cell bounded by the axis-aligned cube
// [-2L,2L]^3 centered at the origin (side 4*limitCubeLen), the same cube
// whose corners cubeCorners returns.
func newBoxCell(limitCubeLen float64) *convexCell {
	l := 2 * limitCubeLen
	planes := []Plane{
		{Normal: r3.Vector{X: 1}, Offset: l},
		{Normal: r3.Vector{X: -1}, Offset: l},
		{Normal: r3.Vector{Y: 1}, Offset: l},
		{Normal: r3.Vector{Y: -1}, Offset: l},
		{Normal: r3.Vector{Z: 1}, Offset: l},
		{Normal: r3.Vector{Z: -1}, Offset: l},
	}
	return &convexCell{planes: planes}
}

// clone returns a deep-enough copy for this type's purposes (only the plane
// list is ever mutated by clipByPlane; InterceptionSolver clips a private
// copy of a shared Laguerre cell per §4.4/§5).
func (c *convexCell) clone() *convexCell {
	planes := make([]Plane, len(c.planes))
	copy(planes, c.planes)
	return &convexCell{planes: planes}
}

// clipByPlane intersects the cell with the half-space p.Eval(x) >= 0.
func (c *convexCell) clipByPlane(p Plane) {
	c.planes = append(c.planes, p)
	c.vertices = nil
	c.ring = nil
}

// empty reports whether the cell, after computeGeometry, has no feasible
// vertex (i.e. the half-space intersection is empty or unbounded-degenerate
// within tolerance).
func (c *convexCell) empty() bool {
	return len(c.vertices) == 0
}

const cellFeasibilityEps = 1e-7

// computeGeometry enumerates the cell's vertices (every feasible
// intersection of 3 planes) and, if there are enough to form a solid, builds
// the boundary triangle-fan rings via quickhull-go.
func (c *convexCell) computeGeometry() {
	c.vertices, c.activePlanes = enumerateCellVertices(c.planes, cellFeasibilityEps)
	if len(c.vertices) < 4 {
		c.vertices = nil
		c.ring = nil
		return
	}
	c.ring, c.boundaryTris = buildBoundaryRings(c.vertices)
}

// Volume returns the cell's volume via a signed tetrahedron-fan
// decomposition from the cell's vertex centroid over its triangulated
// boundary. Used only by tests to assert that clipping monotonically
// shrinks a cell.
func (c *convexCell) Volume() float64 {
	if len(c.vertices) == 0 || len(c.boundaryTris) == 0 {
		return 0
	}
	centroid := r3.Vector{}
	for _, v := range c.vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float64(len(c.vertices)))

	vol := 0.0
	for _, t := range c.boundaryTris {
		a := c.vertices[t[0]].Sub(centroid)
		b := c.vertices[t[1]].Sub(centroid)
		d := c.vertices[t[2]].Sub(centroid)
		vol += a.Dot(b.Cross(d)) / 6
	}
	if vol < 0 {
		vol = -vol
	}
	return vol
}

// numVertices, vertex, and ringAround give the subset of the §3 convex-cell
// interface InterceptionSolver actually needs.
func (c *convexCell) numVertices() int             { return len(c.vertices) }
func (c *convexCell) vertex(i int) r3.Vector       { return c.vertices[i] }
func (c *convexCell) ringAround(i int) []r3.Vector { return c.ring[i] }

// activeNeighborPlane reports whether plane index pi survived clipping as a
// true boundary face (appeared in >=1 feasible vertex) — used by the
// Voronoi tessellator to decide which candidate sites are true Delaunay
// neighbors (DESIGN.md, tessellator.go).
func (c *convexCell) activeNeighborPlane(pi int) bool {
	return pi < len(c.activePlanes) && c.activePlanes[pi]
}

// enumerateCellVertices finds every feasible intersection of 3 planes: a
// point satisfying all other planes' half-spaces within eps. O(n^4) in the
// number of planes (O(n^3) triples, each checked against all n planes), acceptable for a reference implementation of an
// externally-assumed collaborator (§1).
func enumerateCellVertices(planes []Plane, eps float64) ([]r3.Vector, []bool) {
	n := len(planes)
	active := make([]bool, n)
	var verts []r3.Vector
	seen := make(map[[3]int64]bool)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				p, ok := intersectThreePlanes(planes[i], planes[j], planes[k])
				if !ok {
					continue
				}
				feasible := true
				for m := 0; m < n; m++ {
					if planes[m].Eval(p) < -eps {
						feasible = false
						break
					}
				}
				if !feasible {
					continue
				}
				key := quantizePoint(p)
				if seen[key] {
					continue
				}
				seen[key] = true
				verts = append(verts, p)
				active[i], active[j], active[k] = true, true, true
			}
		}
	}
	return verts, active
}

// intersectThreePlanes solves for the point satisfying all three plane
// equations exactly, via Cramer's rule on the scalar triple product.
func intersectThreePlanes(p0, p1, p2 Plane) (r3.Vector, bool) {
	n0, n1, n2 := p0.Normal, p1.Normal, p2.Normal
	det := n0.Dot(n1.Cross(n2))
	if det > -1e-12 && det < 1e-12 {
		return r3.Vector{}, false
	}
	d0, d1, d2 := -p0.Offset, -p1.Offset, -p2.Offset
	sum := n1.Cross(n2).Mul(d0).Add(n2.Cross(n0).Mul(d1)).Add(n0.Cross(n1).Mul(d2))
	return sum.Mul(1 / det), true
}

func quantizePoint(p r3.Vector) [3]int64 {
	const scale = 1e6
	return [3]int64{
		int64(roundHalfAwayFromZero(p.X * scale)),
		int64(roundHalfAwayFromZero(p.Y * scale)),
		int64(roundHalfAwayFromZero(p.Z * scale)),
	}
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

// buildBoundaryRings triangulates the convex hull of verts with
// quickhull-go (the exact call s2delaunay.ComputeDelaunayTriangulation
// uses) and, for each vertex, chains its incident triangles into a single
// cyclic ring of neighboring positions — the "triangle fan" traversal of
// §3/§4.3 — following the same NextVertex/PrevVertex chaining
// s2delaunay.go uses to order a vertex's incident triangles.
func buildBoundaryRings(verts []r3.Vector) ([][]r3.Vector, [][3]int) {
	qh := new(quickhull.QuickHull)
	hull := qh.ConvexHull(verts, true, true, 0)
	if len(hull.Indices) < 3 {
		return nil, nil
	}

	numTris := len(hull.Indices) / 3
	tris := make([][3]int, numTris)
	for t := 0; t < numTris; t++ {
		tris[t] = [3]int{hull.Indices[3*t], hull.Indices[3*t+1], hull.Indices[3*t+2]}
	}

	incident := make([][]int, len(verts))
	for t, tri := range tris {
		for _, v := range tri {
			incident[v] = append(incident[v], t)
		}
	}

	ring := make([][]r3.Vector, len(verts))
	for v, tlist := range incident {
		sortIncidentTrianglesAroundVertex(v, tlist, tris)
		ring[v] = make([]r3.Vector, len(tlist))
		for i, t := range tlist {
			ring[v][i] = verts[nextVertexInTriangle(tris[t], v)]
		}
	}
	return ring, tris
}

// sortIncidentTrianglesAroundVertex reorders tlist in place so consecutive
// triangles share an edge through v, forming a closed fan. Ported from
// s2delaunay.go's sortIncidentTriangleIndicesCCW.
func sortIncidentTrianglesAroundVertex(v int, tlist []int, tris [][3]int) {
	n := len(tlist)
	for i := 1; i < n; i++ {
		nxt := nextVertexInTriangle(tris[tlist[i-1]], v)
		for j := i + 1; j < n; j++ {
			prv := prevVertexInTriangle(tris[tlist[j]], v)
			if nxt == prv {
				tlist[i], tlist[j] = tlist[j], tlist[i]
				break
			}
		}
	}
}

func nextVertexInTriangle(tri [3]int, v int) int {
	for i, x := range tri {
		if x == v {
			return tri[(i+1)%3]
		}
	}
	panic("nextVertexInTriangle: vertex not in triangle")
}

func prevVertexInTriangle(tri [3]int, v int) int {
	for i, x := range tri {
		if x == v {
			return tri[(i+2)%3]
		}
	}
	panic("prevVertexInTriangle: vertex not in triangle")
}
