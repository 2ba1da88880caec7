package meshdist

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

const testLimitCubeLen = 4.0

func buildSingleTriangle(t *testing.T) *AccelerationStructure {
	t.Helper()
	as, err := Build(singleTrianglePositions(), [][3]uint32{{0, 1, 2}}, testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)
	return as
}

// S1: query above the triangle's interior.
func TestScenarioS1InsideFace(t *testing.T) {
	as := buildSingleTriangle(t)
	res := as.CalcClosestPoint(r3.Vector{X: 0.25, Y: 0.25, Z: 1.0})
	test.That(t, res.Kind, test.ShouldEqual, Face)
	test.That(t, res.PrimitiveIndex, test.ShouldEqual, uint32(0))
	test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, res.ClosestPoint.X, test.ShouldAlmostEqual, 0.25, 1e-6)
	test.That(t, res.ClosestPoint.Y, test.ShouldAlmostEqual, 0.25, 1e-6)
	test.That(t, res.ClosestPoint.Z, test.ShouldAlmostEqual, 0.0, 1e-6)
}

// S2: query outside the triangle, nearest edge (0,1).
func TestScenarioS2NearEdge(t *testing.T) {
	as := buildSingleTriangle(t)
	res := as.CalcClosestPoint(r3.Vector{X: 0.5, Y: -0.1, Z: 0.0})
	test.That(t, res.Kind, test.ShouldEqual, Edge)
	test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 0.01, 1e-6)
	test.That(t, res.ClosestPoint.X, test.ShouldAlmostEqual, 0.5, 1e-6)
	test.That(t, res.ClosestPoint.Y, test.ShouldAlmostEqual, 0.0, 1e-6)

	a, b := as.GetEdge(res.PrimitiveIndex)[0], as.GetEdge(res.PrimitiveIndex)[1]
	got := sortedPair(a, b)
	test.That(t, got, test.ShouldResemble, sortedPair(0, 1))
}

// S3: query outside, nearest vertex 0.
func TestScenarioS3NearVertex(t *testing.T) {
	as := buildSingleTriangle(t)
	res := as.CalcClosestPoint(r3.Vector{X: -0.2, Y: -0.2, Z: 0.0})
	test.That(t, res.Kind, test.ShouldEqual, Vertex)
	test.That(t, res.PrimitiveIndex, test.ShouldEqual, uint32(0))
	test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 0.08, 1e-6)
	test.That(t, res.ClosestPoint, test.ShouldResemble, r3.Vector{})
}

func regularTetrahedron() []r3.Vector {
	// A regular tetrahedron centered at the origin (alternating cube
	// corners); edge length is derived from the actual coordinates below
	// rather than assumed.
	return []r3.Vector{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
}

func tetrahedronFaces() [][3]uint32 {
	return [][3]uint32{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
}

// S4: tetrahedron centroid query.
func TestScenarioS4Tetrahedron(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	res := as.CalcClosestPoint(r3.Vector{})
	test.That(t, res.Kind, test.ShouldEqual, Face)

	edgeLen := positions[0].Sub(positions[1]).Norm()
	// Inradius of a regular tetrahedron of edge length a is a/(2*sqrt(6)).
	inradius := edgeLen / (2 * math.Sqrt(6))
	test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, inradius*inradius, 1e-6)
}

// S5: query exactly on a vertex.
func TestScenarioS5OnVertex(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	for k, p := range positions {
		res := as.CalcClosestPoint(p)
		test.That(t, res.Kind, test.ShouldEqual, Vertex)
		test.That(t, res.PrimitiveIndex, test.ShouldEqual, uint32(k))
		test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 0.0, 1e-9)
	}
}

// unitSphereMesh builds a UV-sphere triangulation of the unit sphere:
// latSteps-1 latitude rings of lonSteps vertices each, plus north/south poles.
func unitSphereMesh(latSteps, lonSteps int) ([]r3.Vector, [][3]uint32) {
	positions := []r3.Vector{{X: 0, Y: 0, Z: 1}} // north pole, index 0
	for i := 1; i < latSteps; i++ {
		theta := math.Pi * float64(i) / float64(latSteps)
		for j := 0; j < lonSteps; j++ {
			phi := 2 * math.Pi * float64(j) / float64(lonSteps)
			positions = append(positions, r3.Vector{
				X: math.Sin(theta) * math.Cos(phi),
				Y: math.Sin(theta) * math.Sin(phi),
				Z: math.Cos(theta),
			})
		}
	}
	southPole := uint32(len(positions))
	positions = append(positions, r3.Vector{X: 0, Y: 0, Z: -1})

	ring := func(i int) uint32 { return uint32(1 + (i-1)*lonSteps) }

	var faces [][3]uint32
	for j := 0; j < lonSteps; j++ {
		jn := (j + 1) % lonSteps
		faces = append(faces, [3]uint32{0, ring(1) + uint32(j), ring(1) + uint32(jn)})
	}
	for i := 1; i < latSteps-1; i++ {
		for j := 0; j < lonSteps; j++ {
			jn := (j + 1) % lonSteps
			a, b := ring(i)+uint32(j), ring(i)+uint32(jn)
			c, d := ring(i+1)+uint32(j), ring(i+1)+uint32(jn)
			faces = append(faces, [3]uint32{a, c, b})
			faces = append(faces, [3]uint32{b, c, d})
		}
	}
	last := latSteps - 1
	for j := 0; j < lonSteps; j++ {
		jn := (j + 1) % lonSteps
		faces = append(faces, [3]uint32{ring(last) + uint32(j), southPole, ring(last) + uint32(jn)})
	}
	return positions, faces
}

// S6: 10K random queries against a unit-sphere mesh, checked against the
// brute-force reference to the spec's stated absolute/relative tolerance.
func TestScenarioS6SphereStress(t *testing.T) {
	positions, faces := unitSphereMesh(10, 12)
	as, err := Build(positions, faces, testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	rng := rand.New(rand.NewSource(1))
	const numQueries = 10000
	for i := 0; i < numQueries; i++ {
		q := r3.Vector{
			X: rng.Float64()*4 - 2,
			Y: rng.Float64()*4 - 2,
			Z: rng.Float64()*4 - 2,
		}
		got := as.CalcClosestPoint(q)
		want := bruteForceClosestPoint(as, q)
		test.That(t, got.Kind, test.ShouldEqual, want.Kind)

		tol := 1e-4
		if relTol := 1e-5 * want.DistanceSquared; relTol > tol {
			tol = relTol
		}
		test.That(t, got.DistanceSquared, test.ShouldAlmostEqual, want.DistanceSquared, tol)
	}
}

// Invariant 6: repeated builds of the same input, at different parallelism,
// produce byte-identical packed arrays after canonical sort.
func TestInvariantDeterministicBuild(t *testing.T) {
	positions := regularTetrahedron()
	faces := tetrahedronFaces()

	as1, err := Build(positions, faces, testLimitCubeLen, WithParallelism(1))
	test.That(t, err, test.ShouldBeNil)
	as2, err := Build(positions, faces, testLimitCubeLen, WithParallelism(4))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, as1.edgeBatchesByVertex, test.ShouldResemble, as2.edgeBatchesByVertex)
	test.That(t, as1.faceBatchesByVertex, test.ShouldResemble, as2.faceBatchesByVertex)
	test.That(t, as1.bvh, test.ShouldResemble, as2.bvh)
}

// Invariant 2: the midpoint of every edge resolves exactly to that edge.
func TestInvariantEdgeMidpoints(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	for e := 0; e < as.NumEdges(); e++ {
		ends := as.GetEdge(uint32(e))
		mid := as.GetPositions()[ends[0]].Add(as.GetPositions()[ends[1]]).Mul(0.5)
		res := as.CalcClosestPoint(mid)
		test.That(t, res.Kind, test.ShouldEqual, Edge)
		test.That(t, res.PrimitiveIndex, test.ShouldEqual, uint32(e))
		test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 0.0, 1e-6)
	}
}

// Invariant 3: the centroid of every face resolves exactly to that face.
func TestInvariantFaceCentroids(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	for f := 0; f < as.NumFaces(); f++ {
		tri := as.GetFaces()[f]
		pos := as.GetPositions()
		centroid := pos[tri[0]].Add(pos[tri[1]]).Add(pos[tri[2]]).Mul(1.0 / 3.0)
		res := as.CalcClosestPoint(centroid)
		test.That(t, res.Kind, test.ShouldEqual, Face)
		test.That(t, res.PrimitiveIndex, test.ShouldEqual, uint32(f))
		test.That(t, res.DistanceSquared, test.ShouldAlmostEqual, 0.0, 1e-6)
	}
}

// Invariant 4: every query matches an O(|V|+|E|+|F|) brute-force reference,
// with the vertex < edge < face tie-break.
func TestInvariantMatchesBruteForce(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	queries := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 0.3, Y: 0.3, Z: 0.3},
		{X: -1.5, Y: 0.7, Z: 2.1},
		{X: 1, Y: 1, Z: 1}, // exactly on a vertex
	}
	for _, q := range queries {
		got := as.CalcClosestPoint(q)
		want := bruteForceClosestPoint(as, q)
		test.That(t, got.Kind, test.ShouldEqual, want.Kind)
		test.That(t, got.PrimitiveIndex, test.ShouldEqual, want.PrimitiveIndex)
		test.That(t, got.DistanceSquared, test.ShouldAlmostEqual, want.DistanceSquared, 1e-4)
	}
}

// Invariant 7: concurrent queries against one built structure match the
// sequential results.
func TestInvariantThreadSafeQueries(t *testing.T) {
	positions := regularTetrahedron()
	as, err := Build(positions, tetrahedronFaces(), testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)

	queries := make([]r3.Vector, 200)
	for i := range queries {
		queries[i] = r3.Vector{
			X: float64(i%7) - 3, Y: float64((i*3)%5) - 2, Z: float64((i*5)%11) - 5,
		}
	}

	sequential := make([]Result, len(queries))
	for i, q := range queries {
		sequential[i] = as.CalcClosestPoint(q)
	}

	concurrent := make([]Result, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q r3.Vector) {
			defer wg.Done()
			concurrent[i] = as.CalcClosestPoint(q)
		}(i, q)
	}
	wg.Wait()

	for i := range queries {
		test.That(t, concurrent[i], test.ShouldResemble, sequential[i])
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	_, err := Build(singleTrianglePositions(), [][3]uint32{{0, 0, 1}}, testLimitCubeLen)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEmptyMeshSentinel(t *testing.T) {
	as, err := Build(nil, nil, testLimitCubeLen)
	test.That(t, err, test.ShouldBeNil)
	res := as.CalcClosestPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, res, test.ShouldResemble, emptyMeshResult())
}

// bruteForceClosestPoint is the §8 invariant-4 reference: scans every
// vertex, edge, and face directly, with the vertex < edge < face tie-break
// on numerical ties.
func bruteForceClosestPoint(as *AccelerationStructure, q r3.Vector) Result {
	positions := as.GetPositions()
	best := Result{DistanceSquared: math.Inf(1)}

	for v, p := range positions {
		d2 := p.Sub(q).Norm2()
		if d2 < best.DistanceSquared {
			best = Result{DistanceSquared: d2, PrimitiveIndex: uint32(v), Kind: Vertex, ClosestPoint: p}
		}
	}
	for e, ends := range as.GetEdgeVertices() {
		a, b := positions[ends[0]], positions[ends[1]]
		p, _ := closestPointSegmentPoint(a, b, q)
		d2 := p.Sub(q).Norm2()
		if d2 < best.DistanceSquared {
			best = Result{DistanceSquared: d2, PrimitiveIndex: uint32(e), Kind: Edge, ClosestPoint: p}
		}
	}
	for f, tri := range as.GetFaces() {
		p := closestPointOnTriangle(positions[tri[0]], positions[tri[1]], positions[tri[2]], q)
		d2 := p.Sub(q).Norm2()
		if d2 < best.DistanceSquared {
			best = Result{DistanceSquared: d2, PrimitiveIndex: uint32(f), Kind: Face, ClosestPoint: p}
		}
	}
	return best
}
