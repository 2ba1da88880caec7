package meshdist

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// numPackets bounds leaf size at NUM_PACKETS*simdWidth points (§4.1).
const numPackets = 8

// bvhNode is the §3/§4.1 4-way BVH node. A node is either a leaf (non-nil
// leaf, packed SoA vertex batches) or internal (4 children, each with its
// own AABB stored here in SoA form so a point's distance to all four
// children is one pass over four scalars per axis, rather than one SIMD
// instruction as in a hardware-backed implementation.
//
// Construction generalizes a binary recursive median-split (split on the
// largest-extent axis, triangle leaves) into a two-axis, four-way split with
// vertex-position SoA leaves (DESIGN.md).
type bvhNode struct {
	min, max r3.Vector

	leaf []PackedVertexLeaf // non-nil => this node is a leaf

	childMin, childMax [4]r3.Vector
	children           [4]*bvhNode // non-nil entries only on an internal node
}

// PackedVertexLeaf is the §3 BVH leaf packing: simdWidth vertex positions in
// SoA form plus their original indices. Empty lanes (the trailing partial
// batch) hold math.MaxFloat32 coordinates and index -1, and the query skips
// any lane whose index is negative.
type PackedVertexLeaf struct {
	X, Y, Z laneF32
	Index   laneI32
}

// buildBVH builds the 4-way BVH over a mesh's vertex positions. Returns nil
// for an empty input (§4.1 "Failure").
func buildBVH(positions []r3.Vector) *bvhNode {
	if len(positions) == 0 {
		return nil
	}
	indices := make([]int, len(positions))
	for i := range indices {
		indices[i] = i
	}
	return buildBVHNode(indices, positions, 0)
}

func buildBVHNode(indices []int, positions []r3.Vector, depth int) *bvhNode {
	if len(indices) <= numPackets*simdWidth {
		return buildLeafNode(indices, positions)
	}

	primaryAxis := depth % 3
	secondaryAxis := (depth + 1) % 3

	sortByAxis(indices, positions, primaryAxis)
	mid := len(indices) / 2
	left := append([]int{}, indices[:mid]...)
	right := append([]int{}, indices[mid:]...)

	sortByAxis(left, positions, secondaryAxis)
	lmid := len(left) / 2
	sortByAxis(right, positions, secondaryAxis)
	rmid := len(right) / 2

	quarters := [4][]int{left[:lmid], left[lmid:], right[:rmid], right[rmid:]}

	node := &bvhNode{}
	for i, q := range quarters {
		child := buildBVHNode(q, positions, depth+2)
		node.children[i] = child
		if child != nil {
			node.childMin[i], node.childMax[i] = child.min, child.max
		} else {
			node.childMin[i] = r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
			node.childMax[i] = r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
		}
	}
	node.min, node.max = combineAABBs(node.childMin, node.childMax)
	return node
}

func buildLeafNode(indices []int, positions []r3.Vector) *bvhNode {
	box := emptyBoundingBox()
	for _, idx := range indices {
		box.Extend(positions[idx])
	}

	numBatches := (len(indices) + simdWidth - 1) / simdWidth
	if numBatches == 0 {
		numBatches = 1
	}
	leaves := make([]PackedVertexLeaf, numBatches)
	for b := 0; b < numBatches; b++ {
		var pl PackedVertexLeaf
		for lane := 0; lane < simdWidth; lane++ {
			i := b*simdWidth + lane
			if i >= len(indices) {
				pl.X[lane] = math.MaxFloat32
				pl.Y[lane] = math.MaxFloat32
				pl.Z[lane] = math.MaxFloat32
				pl.Index[lane] = -1
				continue
			}
			p := positions[indices[i]]
			pl.X[lane] = float32(p.X)
			pl.Y[lane] = float32(p.Y)
			pl.Z[lane] = float32(p.Z)
			pl.Index[lane] = int32(indices[i])
		}
		leaves[b] = pl
	}
	return &bvhNode{min: box.Lower, max: box.Upper, leaf: leaves}
}

func sortByAxis(indices []int, positions []r3.Vector, axis int) {
	sort.Slice(indices, func(i, j int) bool {
		return axisValue(positions[indices[i]], axis) < axisValue(positions[indices[j]], axis)
	})
}

func axisValue(p r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func combineAABBs(mins, maxs [4]r3.Vector) (r3.Vector, r3.Vector) {
	box := emptyBoundingBox()
	for i := 0; i < 4; i++ {
		if mins[i].X > maxs[i].X {
			continue // empty child slot
		}
		box.Extend(mins[i])
		box.Extend(maxs[i])
	}
	return box.Lower, box.Upper
}

// bvhStackEntry is one (node, minDistSq) entry of the §4.1 explicit query
// stack.
type bvhStackEntry struct {
	node      *bvhNode
	minDistSq float64
}

// nearestVertex is §4.1's Bvh query: iterative best-first search with a
// fixed-depth-bounded stack, returning the index of the closest vertex and
// its squared distance to q. Returns (-1, +Inf) for a nil/empty BVH.
func nearestVertex(root *bvhNode, q r3.Vector) (int, float64) {
	if root == nil {
		return -1, math.Inf(1)
	}

	bestIdx := -1
	bestDistSq := math.Inf(1)

	stack := make([]bvhStackEntry, 0, 64)
	stack = append(stack, bvhStackEntry{node: root, minDistSq: 0})

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.minDistSq >= bestDistSq {
			continue
		}
		node := top.node

		if node.leaf != nil {
			for _, pl := range node.leaf {
				for lane := 0; lane < simdWidth; lane++ {
					idx := pl.Index[lane]
					if idx < 0 {
						continue
					}
					dx := float64(pl.X[lane]) - q.X
					dy := float64(pl.Y[lane]) - q.Y
					dz := float64(pl.Z[lane]) - q.Z
					d2 := dx*dx + dy*dy + dz*dz
					if d2 < bestDistSq {
						bestDistSq = d2
						bestIdx = int(idx)
					}
				}
			}
			continue
		}

		var dists [4]float64
		for i := 0; i < 4; i++ {
			dists[i] = pointToAABBDistSq(node.childMin[i], node.childMax[i], q)
		}
		order := sortChildrenByDistance(dists)
		// Push in descending distance order so the nearest child is popped
		// (and explored) next (§4.1).
		for k := 3; k >= 0; k-- {
			ci := order[k]
			if node.children[ci] == nil {
				continue
			}
			if dists[ci] < bestDistSq {
				stack = append(stack, bvhStackEntry{node: node.children[ci], minDistSq: dists[ci]})
			}
		}
	}
	return bestIdx, bestDistSq
}

// sortChildrenByDistance ranks four children by ascending distance using
// the 5-compare-exchange sorting network for 4 elements (§9: "must be
// expressed as five conditional swaps... do not reintroduce a general
// comparator sort").
func sortChildrenByDistance(d [4]float64) [4]int {
	idx := [4]int{0, 1, 2, 3}
	swap := func(i, j int) {
		if d[idx[i]] > d[idx[j]] {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	swap(0, 1)
	swap(2, 3)
	swap(0, 2)
	swap(1, 3)
	swap(1, 2)
	return idx
}
