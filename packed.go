package meshdist

import (
	"sort"
)

// interceptionEntry is the §3 InterceptionEntry(v, primitive): one
// (primitive, box) pair recorded by InterceptionSolver before packing.
type interceptionEntry struct {
	primitiveIndex uint32 // local index: edge index, or face index
	box            BoundingBox
}

// PackedEdge is a simdWidth-wide SIMD batch of edge interception entries
// for a single mesh vertex (§3).
type PackedEdge struct {
	MinX         laneF32
	StartX       laneF32
	StartY       laneF32
	StartZ       laneF32
	DirX         laneF32
	DirY         laneF32
	DirZ         laneF32
	DirLenSq     laneF32
	PrimitiveIdx laneI32
}

// PackedFace is a simdWidth-wide SIMD batch of face interception entries
// for a single mesh vertex (§3).
type PackedFace struct {
	MinX laneF32

	FaceNormalX, FaceNormalY, FaceNormalZ, FaceOffset laneF32

	Edge0NormalX, Edge0NormalY, Edge0NormalZ, Edge0Offset laneF32
	Edge1NormalX, Edge1NormalY, Edge1NormalZ, Edge1Offset laneF32
	Edge2NormalX, Edge2NormalY, Edge2NormalZ, Edge2Offset laneF32

	PrimitiveIdx laneI32
}

// packEdgeBatches sorts v's intercepted edges by box.Lower.X ascending and
// packs them into simdWidth-wide batches, duplicating the last valid lane
// to fill a trailing partial batch (§3: "never by neutral sentinels").
func packEdgeBatches(entries []interceptionEntry, mg *MeshGeometry, numVertices int) []PackedEdge {
	if len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].box.Lower.X < entries[j].box.Lower.X
	})

	numBatches := (len(entries) + simdWidth - 1) / simdWidth
	batches := make([]PackedEdge, numBatches)
	for b := 0; b < numBatches; b++ {
		var batch PackedEdge
		for lane := 0; lane < simdWidth; lane++ {
			idx := b*simdWidth + lane
			if idx >= len(entries) {
				idx = len(entries) - 1 // duplicate last valid lane
			}
			e := entries[idx]
			v0, v1 := mg.Edge(e.primitiveIndex)[0], mg.Edge(e.primitiveIndex)[1]
			p0, p1 := mg.positions[v0], mg.positions[v1]
			dir := p1.Sub(p0)

			batch.MinX[lane] = float32(entries[idx].box.Lower.X)
			batch.StartX[lane] = float32(p0.X)
			batch.StartY[lane] = float32(p0.Y)
			batch.StartZ[lane] = float32(p0.Z)
			batch.DirX[lane] = float32(dir.X)
			batch.DirY[lane] = float32(dir.Y)
			batch.DirZ[lane] = float32(dir.Z)
			batch.DirLenSq[lane] = float32(dir.Norm2())
			batch.PrimitiveIdx[lane] = int32(uint32(e.primitiveIndex) + uint32(numVertices))
		}
		batches[b] = batch
	}
	return batches
}

// packFaceBatches is packEdgeBatches's face-pass counterpart.
func packFaceBatches(entries []interceptionEntry, mg *MeshGeometry, numVertices, numEdges int) []PackedFace {
	if len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].box.Lower.X < entries[j].box.Lower.X
	})

	numBatches := (len(entries) + simdWidth - 1) / simdWidth
	batches := make([]PackedFace, numBatches)
	for b := 0; b < numBatches; b++ {
		var batch PackedFace
		for lane := 0; lane < simdWidth; lane++ {
			idx := b*simdWidth + lane
			if idx >= len(entries) {
				idx = len(entries) - 1
			}
			e := entries[idx]
			face := mg.faces[e.primitiveIndex]

			batch.MinX[lane] = float32(entries[idx].box.Lower.X)

			setPlaneLane(&batch.FaceNormalX, &batch.FaceNormalY, &batch.FaceNormalZ, &batch.FaceOffset, lane, face.geom.facePlane)
			setPlaneLane(&batch.Edge0NormalX, &batch.Edge0NormalY, &batch.Edge0NormalZ, &batch.Edge0Offset, lane, face.geom.edgePlanes[0])
			setPlaneLane(&batch.Edge1NormalX, &batch.Edge1NormalY, &batch.Edge1NormalZ, &batch.Edge1Offset, lane, face.geom.edgePlanes[1])
			setPlaneLane(&batch.Edge2NormalX, &batch.Edge2NormalY, &batch.Edge2NormalZ, &batch.Edge2Offset, lane, face.geom.edgePlanes[2])

			batch.PrimitiveIdx[lane] = int32(uint32(e.primitiveIndex) + uint32(numVertices) + uint32(numEdges))
		}
		batches[b] = batch
	}
	return batches
}

func setPlaneLane(nx, ny, nz, off *laneF32, lane int, p Plane) {
	nx[lane] = float32(p.Normal.X)
	ny[lane] = float32(p.Normal.Y)
	nz[lane] = float32(p.Normal.Z)
	off[lane] = float32(p.Offset)
}
