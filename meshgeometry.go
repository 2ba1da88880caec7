package meshdist

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// edgeKey is the canonical (min,max) vertex-index key for an undirected
// edge, matching §4.2's "stored in an ordered map keyed by (min,max)".
type edgeKey struct {
	a, b uint32 // a < b
}

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// edgeRecord is one entry of MeshGeometry.edges: the endpoints, the up-to-4
// clipping planes of §3, and the count actually populated.
type edgeRecord struct {
	v0, v1               uint32
	planes               [4]Plane
	numPlanes            int
	cappedAdjacentPlanes bool
}

// faceRecord is one entry of MeshGeometry.faces: the triangle's vertex
// indices, its evaluated geometry, and the three global edge indices in
// cyclic order e_{01}, e_{12}, e_{20} (§6 GetFaceEdges).
type faceRecord struct {
	v0, v1, v2 uint32
	geom       triangleGeom
	edges      [3]uint32
}

// MeshGeometry is the validated, deduplicated mesh plus derived edge/face
// clipping-plane data (§4.2). It is the first build stage: CellBuilder and
// InterceptionSolver both read it but never mutate it.
type MeshGeometry struct {
	positions []r3.Vector
	faces     []faceRecord
	edges     []edgeRecord
	edgeIndex map[edgeKey]uint32
}

// NumVertices, NumEdges, NumFaces are the §6 introspection counts.
func (mg *MeshGeometry) NumVertices() int { return len(mg.positions) }
func (mg *MeshGeometry) NumEdges() int    { return len(mg.edges) }
func (mg *MeshGeometry) NumFaces() int    { return len(mg.faces) }

// Positions returns a copy of the built (post-dedup) vertex positions.
func (mg *MeshGeometry) Positions() []r3.Vector {
	out := make([]r3.Vector, len(mg.positions))
	copy(out, mg.positions)
	return out
}

// Faces returns the (v0,v1,v2) index triples.
func (mg *MeshGeometry) Faces() [][3]uint32 {
	out := make([][3]uint32, len(mg.faces))
	for i, f := range mg.faces {
		out[i] = [3]uint32{f.v0, f.v1, f.v2}
	}
	return out
}

// EdgeVertices returns the (a,b) index pairs, a<b, for every edge.
func (mg *MeshGeometry) EdgeVertices() [][2]uint32 {
	out := make([][2]uint32, len(mg.edges))
	for i, e := range mg.edges {
		out[i] = [2]uint32{e.v0, e.v1}
	}
	return out
}

// Edge returns the (a,b) pair for a single edge index.
func (mg *MeshGeometry) Edge(index uint32) [2]uint32 {
	e := mg.edges[index]
	return [2]uint32{e.v0, e.v1}
}

// FaceEdges returns, for every face, its three global edge indices in
// cyclic order e_{01}, e_{12}, e_{20}.
func (mg *MeshGeometry) FaceEdges() [][3]uint32 {
	out := make([][3]uint32, len(mg.faces))
	for i, f := range mg.faces {
		out[i] = f.edges
	}
	return out
}

// buildMeshGeometry validates the flat input arrays (§6/§7), merges
// bit-identical duplicate vertices, reindexes triangles, and derives the
// edge/face clipping-plane data of §4.2.
func buildMeshGeometry(positions []r3.Vector, triangles [][3]uint32) (*MeshGeometry, error) {
	for _, p := range positions {
		if !finiteVector(p) {
			return nil, newInvalidInputError("non-finite vertex coordinate")
		}
	}

	dedup, remap := dedupVertices(positions)

	mg := &MeshGeometry{
		positions: dedup,
		edgeIndex: make(map[edgeKey]uint32),
	}

	for _, tri := range triangles {
		if int(tri[0]) >= len(positions) || int(tri[1]) >= len(positions) || int(tri[2]) >= len(positions) {
			return nil, newInvalidInputError("triangle references out-of-range vertex index")
		}
		v0, v1, v2 := remap[tri[0]], remap[tri[1]], remap[tri[2]]
		if v0 == v1 || v1 == v2 || v2 == v0 {
			return nil, newInvalidInputError("triangle has repeated vertex indices")
		}

		geom, ok := newTriangleGeom(dedup[v0], dedup[v1], dedup[v2])
		if !ok {
			return nil, newDegenerateGeometryError("triangle normal degenerates to zero")
		}

		var edgeIdxs [3]uint32
		pairs := [3][2]uint32{{v0, v1}, {v1, v2}, {v2, v0}}
		for i, pair := range pairs {
			a, b := pair[0], pair[1]
			if dedup[a].Sub(dedup[b]).Norm2() < floatEpsilon*floatEpsilon {
				return nil, newDegenerateGeometryError("edge has zero length")
			}
			idx, err := mg.getOrCreateEdge(a, b)
			if err != nil {
				return nil, err
			}
			edgeIdxs[i] = idx
			// edgePlanes[2] is the inward plane for edge (p0,p1) i.e. pairs[0];
			// edgePlanes[0] for pairs[1]; edgePlanes[1] for pairs[2].
			inward := geom.edgePlanes[(i+2)%3]
			mg.appendFaceAdjacentClippingPlane(idx, inward.Negate())
		}

		mg.faces = append(mg.faces, faceRecord{v0: v0, v1: v1, v2: v2, geom: geom, edges: edgeIdxs})
	}

	for i := range mg.edges {
		mg.capEdgePlanes(uint32(i))
	}

	return mg, nil
}

// getOrCreateEdge returns the edge index for (a,b), creating it (with its
// two endpoint-cap planes, §4.2) if this is the first time it is seen.
func (mg *MeshGeometry) getOrCreateEdge(a, b uint32) (uint32, error) {
	key := makeEdgeKey(a, b)
	if idx, ok := mg.edgeIndex[key]; ok {
		return idx, nil
	}

	pa, pb := mg.positions[key.a], mg.positions[key.b]
	dir := pb.Sub(pa)
	if dir.Norm2() < floatEpsilon*floatEpsilon {
		return 0, newDegenerateGeometryError("edge has zero length")
	}

	capA, ok1 := newPlaneFromPoint(pa, dir) // normal normalize(b-a), feasible for p between a and b
	capB, ok2 := newPlaneFromPoint(pb, dir.Mul(-1))
	if !ok1 || !ok2 {
		return 0, newDegenerateGeometryError("edge cap plane degenerates")
	}

	idx := uint32(len(mg.edges))
	mg.edges = append(mg.edges, edgeRecord{
		v0: key.a, v1: key.b,
		planes:    [4]Plane{capA, capB},
		numPlanes: 2,
	})
	mg.edgeIndex[key] = idx
	return idx, nil
}

// appendFaceAdjacentClippingPlane appends a face-adjacent clipping plane to
// an edge, capping the total at 4 per §3/§9 ("silently cap... and log/
// diagnose in a debug mode" — the cap is enforced here; the diagnostic log
// is emitted by the builder once it knows whether a logger was configured).
func (mg *MeshGeometry) appendFaceAdjacentClippingPlane(edgeIdx uint32, p Plane) {
	e := &mg.edges[edgeIdx]
	if e.numPlanes >= 4 {
		e.cappedAdjacentPlanes = true
		return
	}
	e.planes[e.numPlanes] = p
	e.numPlanes++
}

// capEdgePlanes is a no-op hook kept for symmetry with the builder's
// per-edge finalize pass; present so future per-edge validation has a
// single call site.
func (mg *MeshGeometry) capEdgePlanes(uint32) {}

// cappedEdgeCount returns how many non-manifold edges hit the §3/§9
// four-plane cap, for the builder's diagnostic log line.
func (mg *MeshGeometry) cappedEdgeCount() int {
	n := 0
	for _, e := range mg.edges {
		if e.cappedAdjacentPlanes {
			n++
		}
	}
	return n
}

func finiteVector(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// dedupVertices merges bit-identical duplicate vertices (§6) and returns the
// deduplicated slice plus a remap from original index to surviving index.
func dedupVertices(positions []r3.Vector) ([]r3.Vector, []uint32) {
	type key struct {
		x, y, z float64
	}
	seen := make(map[key]uint32, len(positions))
	dedup := make([]r3.Vector, 0, len(positions))
	remap := make([]uint32, len(positions))

	for i, p := range positions {
		k := key{p.X, p.Y, p.Z}
		if idx, ok := seen[k]; ok {
			remap[i] = idx
			continue
		}
		idx := uint32(len(dedup))
		seen[k] = idx
		dedup = append(dedup, p)
		remap[i] = idx
	}
	return dedup, remap
}

// sortedEdgeKeys returns every edge key sorted by (a,b), for iterating
// edges deterministically.
func (mg *MeshGeometry) sortedEdgeKeys() []edgeKey {
	keys := make([]edgeKey, 0, len(mg.edgeIndex))
	for k := range mg.edgeIndex {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	return keys
}
