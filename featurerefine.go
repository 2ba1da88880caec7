package meshdist

import "github.com/golang/geo/r3"

// This file is §4.5 FeatureRefine: the two SIMD closest-feature kernels,
// written in terms of lanes.go's trait functions so a hardware-backed SIMD
// implementation could replace lanes.go without touching this file.

// featureRefine scans v's packed edge batches then face batches, starting
// from the BVH's vertex candidate (initD2, initIdx), and returns the
// winning (distance_squared, primitive_idx) after the final horizontal
// reduction across lanes.
func featureRefine(q r3.Vector, edgeBatches []PackedEdge, faceBatches []PackedFace, initD2 float64, initIdx uint32) (float64, uint32) {
	bd2 := splatF32(float32(initD2))
	bidx := splatI32(int32(initIdx))

	bd2, bidx = scanEdgeBatches(q, edgeBatches, bd2, bidx)
	bd2, bidx = scanFaceBatches(q, faceBatches, bd2, bidx)

	return reduceMinLane(bd2, bidx)
}

// scanEdgeBatches is the §4.5 edge kernel.
func scanEdgeBatches(q r3.Vector, batches []PackedEdge, bd2 laneF32, bidx laneI32) (laneF32, laneI32) {
	qx, qy, qz := splatF32(float32(q.X)), splatF32(float32(q.Y)), splatF32(float32(q.Z))
	zero, one := splatF32(0), splatF32(1)

	for _, p := range batches {
		if float64(p.MinX[0]) > q.X {
			break // lane 0 is the batch floor; no later batch can win
		}

		apx := subF32(qx, p.StartX)
		apy := subF32(qy, p.StartY)
		apz := subF32(qz, p.StartZ)

		dot := fmaF32(apx, p.DirX, fmaF32(apy, p.DirY, mulF32(apz, p.DirZ)))
		t := divF32(dot, p.DirLenSq)

		mask := andMask(geqF32(t, zero), leqF32(t, one))

		projx := fmaF32(t, p.DirX, p.StartX)
		projy := fmaF32(t, p.DirY, p.StartY)
		projz := fmaF32(t, p.DirZ, p.StartZ)

		dx := subF32(qx, projx)
		dy := subF32(qy, projy)
		dz := subF32(qz, projz)
		d2 := fmaF32(dx, dx, fmaF32(dy, dy, mulF32(dz, dz)))

		mask = andMask(mask, leqF32(d2, bd2))
		bd2 = blendF32(mask, d2, bd2)
		bidx = blendI32(mask, p.PrimitiveIdx, bidx)
	}
	return bd2, bidx
}

// scanFaceBatches is the §4.5 face kernel.
func scanFaceBatches(q r3.Vector, batches []PackedFace, bd2 laneF32, bidx laneI32) (laneF32, laneI32) {
	qx, qy, qz := splatF32(float32(q.X)), splatF32(float32(q.Y)), splatF32(float32(q.Z))
	zero := splatF32(0)

	for _, p := range batches {
		if float64(p.MinX[0]) > q.X {
			break
		}

		s0 := evalPlaneLane(p.Edge0NormalX, p.Edge0NormalY, p.Edge0NormalZ, p.Edge0Offset, qx, qy, qz)
		s1 := evalPlaneLane(p.Edge1NormalX, p.Edge1NormalY, p.Edge1NormalZ, p.Edge1Offset, qx, qy, qz)
		s2 := evalPlaneLane(p.Edge2NormalX, p.Edge2NormalY, p.Edge2NormalZ, p.Edge2Offset, qx, qy, qz)

		mask := andMask(andMask(geqF32(s0, zero), geqF32(s1, zero)), geqF32(s2, zero))

		d := evalPlaneLane(p.FaceNormalX, p.FaceNormalY, p.FaceNormalZ, p.FaceOffset, qx, qy, qz)
		d2 := mulF32(d, d)

		mask = andMask(mask, leqF32(d2, bd2))
		bd2 = blendF32(mask, d2, bd2)
		bidx = blendI32(mask, p.PrimitiveIdx, bidx)
	}
	return bd2, bidx
}

func evalPlaneLane(nx, ny, nz, offset, qx, qy, qz laneF32) laneF32 {
	return addF32(fmaF32(nx, qx, fmaF32(ny, qy, mulF32(nz, qz))), offset)
}

// reduceMinLane performs the §4.5 "after both passes" horizontal reduction:
// the minimum best_d2 across lanes, first-encountered lane winning ties
// (lane 0 holds the BVH's vertex candidate, so an untouched register
// correctly reduces back to it).
func reduceMinLane(bd2 laneF32, bidx laneI32) (float64, uint32) {
	best := bd2[0]
	idx := bidx[0]
	for i := 1; i < simdWidth; i++ {
		if bd2[i] < best {
			best = bd2[i]
			idx = bidx[i]
		}
	}
	return float64(best), uint32(idx)
}
