package meshdist

import "github.com/golang/geo/r3"

// LaguerreCell is the §3 build-time-only structure associated with one mesh
// vertex: its Voronoi/Laguerre cell, bounded by the outer cube. All mesh
// vertex weights are equal (glossary), so this coincides with the ordinary
// Voronoi cell.
type LaguerreCell struct {
	site int
	cell *convexCell
}

// Tessellator is the §1 "external Delaunay/weighted-Delaunay tessellator"
// collaborator: computing the tessellation of a point set, extracting a
// site's convex Laguerre cell, and listing a site's Delaunay neighbors.
// voronoiTessellator (tessellator.go) is the reference implementation;
// see DESIGN.md for why a real deployment would swap in an
// incremental/accelerated engine instead.
type Tessellator interface {
	// Tessellate computes every mesh vertex's Laguerre cell, clipped to the
	// cube [-2*limitCubeLen, 2*limitCubeLen]^3, given the augmented point set (mesh
	// vertices followed by the 8 cube corners). Returns one cell and one
	// neighbor list per mesh vertex (indices [0,numMeshVerts)); cube-corner
	// indices never appear in a neighbor list (§4.3).
	Tessellate(augmented []r3.Vector, numMeshVerts int, limitCubeLen float64, parallelism int) ([]*LaguerreCell, [][]int, error)
}

type voronoiTessellator struct{}

// newVoronoiTessellator returns the default Tessellator.
func newVoronoiTessellator() Tessellator { return voronoiTessellator{} }

func (voronoiTessellator) Tessellate(
	augmented []r3.Vector, numMeshVerts int, limitCubeLen float64, parallelism int,
) ([]*LaguerreCell, [][]int, error) {
	cells := make([]*LaguerreCell, numMeshVerts)
	neighbors := make([][]int, numMeshVerts)
	errs := make([]error, numMeshVerts)

	parallelFor(0, numMeshVerts, parallelism, func(site int) {
		cell, nbrs, err := computeVoronoiCell(site, augmented, numMeshVerts, limitCubeLen)
		if err != nil {
			errs[site] = err
			return
		}
		cells[site] = &LaguerreCell{site: site, cell: cell}
		neighbors[site] = nbrs
	})

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return cells, neighbors, nil
}

// computeVoronoiCell builds site's cell by clipping the outer cube with the
// bisector plane of every other augmented point, then reads off which
// planes survived as true Delaunay-neighbor faces.
func computeVoronoiCell(site int, augmented []r3.Vector, numMeshVerts int, limitCubeLen float64) (*convexCell, []int, error) {
	cell := newBoxCell(limitCubeLen)
	planeSite := make([]int, 6)
	for i := range planeSite {
		planeSite[i] = -1
	}

	sitePos := augmented[site]
	for j, other := range augmented {
		if j == site {
			continue
		}
		plane, ok := bisectorPlane(sitePos, other)
		if !ok {
			continue
		}
		cell.clipByPlane(plane)
		planeSite = append(planeSite, j)
	}

	cell.computeGeometry()
	if cell.empty() {
		return nil, nil, newTessellationError("Laguerre cell of mesh vertex is empty after clipping", nil)
	}

	var neighbors []int
	for pi, other := range planeSite {
		if other < 0 || other >= numMeshVerts {
			continue
		}
		if cell.activeNeighborPlane(pi) {
			neighbors = append(neighbors, other)
		}
	}
	return cell, neighbors, nil
}

// cubeCorners returns the 8 corners of [-2L,2L]^3, appended to the mesh
// vertex set to close off unbounded cells (§4.3).
func cubeCorners(limitCubeLen float64) []r3.Vector {
	l := 2 * limitCubeLen
	corners := make([]r3.Vector, 0, 8)
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corners = append(corners, r3.Vector{X: sx * l, Y: sy * l, Z: sz * l})
			}
		}
	}
	return corners
}
