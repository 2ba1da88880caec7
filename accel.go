package meshdist

import (
	"go.uber.org/zap"

	"github.com/golang/geo/r3"
)

// defaultBisectionTolerance is §4.4's "tol = 1e-5 relative to segment
// length".
const defaultBisectionTolerance = 1e-5

// buildConfig collects the functional BuildOptions (§6/[AMBIENT]
// Configuration), mirroring the retrieved s2voronoi package's
// DelaunayTriangulationOption pattern.
type buildConfig struct {
	logger      *zap.SugaredLogger
	parallelism int
	relTol      float64
}

// BuildOption configures a call to Build.
type BuildOption func(*buildConfig)

// WithLogger attaches a logger for build-time diagnostics. A nil logger
// (the default) silences all build logging.
func WithLogger(logger *zap.SugaredLogger) BuildOption {
	return func(c *buildConfig) { c.logger = logger }
}

// WithParallelism overrides the number of worker goroutines parallel_for
// uses during build. n<=0 falls back to runtime.NumCPU().
func WithParallelism(n int) BuildOption {
	return func(c *buildConfig) { c.parallelism = n }
}

// WithBisectionTolerance overrides the §4.4 relative bisection tolerance
// used by InterceptionSolver's ring-crossing solver (default 1e-5).
func WithBisectionTolerance(rel float64) BuildOption {
	return func(c *buildConfig) { c.relTol = rel }
}

// AccelerationStructure is the built, read-only §6 query target. It owns
// every array produced by the build phase; queries borrow from it without
// allocating.
type AccelerationStructure struct {
	mg  *MeshGeometry
	bvh *bvhNode

	edgeBatchesByVertex [][]PackedEdge
	faceBatchesByVertex [][]PackedFace

	stats Stats
}

// Build runs the full build phase (§2): MeshGeometry, then CellBuilder,
// then InterceptionSolver, then packing, then the vertex BVH. It is a
// single synchronous call (§5); errors are returned, never panicked.
func Build(positions []r3.Vector, triangles [][3]uint32, limitCubeLen float64, opts ...BuildOption) (*AccelerationStructure, error) {
	cfg := buildConfig{relTol: defaultBisectionTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}

	mg, err := buildMeshGeometry(positions, triangles)
	if err != nil {
		return nil, err
	}

	if capped := mg.cappedEdgeCount(); capped > 0 && cfg.logger != nil {
		cfg.logger.Warnf("meshdist: %d edge(s) capped at 4 clipping planes (non-manifold)", capped)
	}

	if mg.NumVertices() == 0 {
		as := &AccelerationStructure{mg: mg}
		if cfg.logger != nil {
			cfg.logger.Infow("meshdist: build finished", "vertices", 0, "edges", 0, "faces", 0)
		}
		return as, nil
	}

	cb, err := buildCells(mg, limitCubeLen, newVoronoiTessellator(), cfg.parallelism)
	if err != nil {
		return nil, err
	}

	edgeByVertex, faceByVertex := solveInterceptions(mg, cb, cfg.relTol, cfg.parallelism, cfg.logger)

	numV := mg.NumVertices()
	edgeBatchesByVertex := make([][]PackedEdge, numV)
	faceBatchesByVertex := make([][]PackedFace, numV)
	stats := Stats{}
	for v := 0; v < numV; v++ {
		edgeBatchesByVertex[v] = packEdgeBatches(edgeByVertex[v], mg, numV)
		faceBatchesByVertex[v] = packFaceBatches(faceByVertex[v], mg, numV, mg.NumEdges())
		stats.NumEdgeInterceptions += len(edgeByVertex[v])
		stats.NumFaceInterceptions += len(faceByVertex[v])
		stats.EdgeBatchCount += len(edgeBatchesByVertex[v])
		stats.FaceBatchCount += len(faceBatchesByVertex[v])
	}
	stats.CappedEdges = mg.cappedEdgeCount()

	bvh := buildBVH(mg.Positions())

	if cfg.logger != nil {
		cfg.logger.Infow("meshdist: build finished",
			"vertices", numV, "edges", mg.NumEdges(), "faces", mg.NumFaces(),
			"edgeInterceptions", stats.NumEdgeInterceptions, "faceInterceptions", stats.NumFaceInterceptions,
		)
	}

	return &AccelerationStructure{
		mg:                  mg,
		bvh:                 bvh,
		edgeBatchesByVertex: edgeBatchesByVertex,
		faceBatchesByVertex: faceBatchesByVertex,
		stats:               stats,
	}, nil
}

// CalcClosestPoint is the §6 query entry point. Total: every finite q
// yields a Result, never an error.
func (as *AccelerationStructure) CalcClosestPoint(q r3.Vector) Result {
	if as.mg.NumVertices() == 0 {
		return emptyMeshResult()
	}

	vIdx, vDistSq := nearestVertex(as.bvh, q)
	distSq, globalIdx := featureRefine(q, as.edgeBatchesByVertex[vIdx], as.faceBatchesByVertex[vIdx], vDistSq, uint32(vIdx))
	return assembleResult(as.mg, q, globalIdx, distSq)
}

// NumVertices, NumEdges, NumFaces are the §6 introspection counts.
func (as *AccelerationStructure) NumVertices() int { return as.mg.NumVertices() }
func (as *AccelerationStructure) NumEdges() int    { return as.mg.NumEdges() }
func (as *AccelerationStructure) NumFaces() int    { return as.mg.NumFaces() }

// GetPositions, GetFaces, GetEdgeVertices, GetEdge, GetFaceEdges are the
// remaining §6 introspection accessors, delegating to MeshGeometry.
func (as *AccelerationStructure) GetPositions() []r3.Vector      { return as.mg.Positions() }
func (as *AccelerationStructure) GetFaces() [][3]uint32          { return as.mg.Faces() }
func (as *AccelerationStructure) GetEdgeVertices() [][2]uint32   { return as.mg.EdgeVertices() }
func (as *AccelerationStructure) GetEdge(index uint32) [2]uint32 { return as.mg.Edge(index) }
func (as *AccelerationStructure) GetFaceEdges() [][3]uint32      { return as.mg.FaceEdges() }

// Stats is the [SUPPLEMENT] introspection accessor reporting
// interception-list sizes and packed-batch counts, useful for tuning
// limit_cube_len and for diagnosing the §9 clipping-plane cap.
type Stats struct {
	NumEdgeInterceptions int
	NumFaceInterceptions int
	EdgeBatchCount       int
	FaceBatchCount       int
	CappedEdges          int
}

// AvgEdgeBatchOccupancy and AvgFaceBatchOccupancy report the mean number of
// live (non-duplicated) lanes per packed batch, for tuning limit_cube_len.
func (s Stats) AvgEdgeBatchOccupancy() float64 {
	if s.EdgeBatchCount == 0 {
		return 0
	}
	return float64(s.NumEdgeInterceptions) / float64(s.EdgeBatchCount)
}

func (s Stats) AvgFaceBatchOccupancy() float64 {
	if s.FaceBatchCount == 0 {
		return 0
	}
	return float64(s.NumFaceInterceptions) / float64(s.FaceBatchCount)
}

// Stats returns the build's interception/packing statistics.
func (as *AccelerationStructure) Stats() Stats { return as.stats }
