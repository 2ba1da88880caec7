package meshdist

import "github.com/golang/geo/r3"

// CellBuilder is the §4.3 build stage: it augments the mesh vertex set with
// the outer cube's corners and asks a Tessellator for each mesh vertex's
// Laguerre cell and Delaunay-neighbor list. It depends only on
// MeshGeometry's vertex positions.
type CellBuilder struct {
	limitCubeLen float64
	cells        []*LaguerreCell
	neighbors    [][]int
}

func buildCells(mg *MeshGeometry, limitCubeLen float64, tessellator Tessellator, parallelism int) (*CellBuilder, error) {
	numV := mg.NumVertices()
	augmented := make([]r3.Vector, 0, numV+8)
	augmented = append(augmented, mg.Positions()...)
	augmented = append(augmented, cubeCorners(limitCubeLen)...)

	cells, neighbors, err := tessellator.Tessellate(augmented, numV, limitCubeLen, parallelism)
	if err != nil {
		return nil, err
	}
	return &CellBuilder{limitCubeLen: limitCubeLen, cells: cells, neighbors: neighbors}, nil
}
