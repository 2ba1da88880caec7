package meshdist

// This file is the §9 "SIMD width abstraction": the capability-set trait
// {splat_f32, splat_i32, fma, min, max, leq, geq, and_mask, blend_f32,
// blend_i32, extract_lane_i, set_lane_i}, implemented over plain
// simdWidth-lane arrays. Higher layers (packed.go, featurerefine.go) are
// written purely in terms of these functions so a hardware-backed
// implementation could replace this file without touching callers — see
// DESIGN.md for why that swap is not made here.

type laneF32 [simdWidth]float32
type laneI32 [simdWidth]int32
type laneMask [simdWidth]bool

func splatF32(v float32) laneF32 {
	var l laneF32
	for i := range l {
		l[i] = v
	}
	return l
}

func splatI32(v int32) laneI32 {
	var l laneI32
	for i := range l {
		l[i] = v
	}
	return l
}

// fmaF32 returns a*b + c, lanewise.
func fmaF32(a, b, c laneF32) laneF32 {
	var r laneF32
	for i := range r {
		r[i] = a[i]*b[i] + c[i]
	}
	return r
}

func addF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

func subF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

func mulF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		r[i] = a[i] * b[i]
	}
	return r
}

func divF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		r[i] = a[i] / b[i]
	}
	return r
}

func minF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		if a[i] < b[i] {
			r[i] = a[i]
		} else {
			r[i] = b[i]
		}
	}
	return r
}

func maxF32(a, b laneF32) laneF32 {
	var r laneF32
	for i := range r {
		if a[i] > b[i] {
			r[i] = a[i]
		} else {
			r[i] = b[i]
		}
	}
	return r
}

func leqF32(a, b laneF32) laneMask {
	var m laneMask
	for i := range m {
		m[i] = a[i] <= b[i]
	}
	return m
}

func geqF32(a, b laneF32) laneMask {
	var m laneMask
	for i := range m {
		m[i] = a[i] >= b[i]
	}
	return m
}

func andMask(a, b laneMask) laneMask {
	var m laneMask
	for i := range m {
		m[i] = a[i] && b[i]
	}
	return m
}

func blendF32(mask laneMask, onTrue, onFalse laneF32) laneF32 {
	var r laneF32
	for i := range r {
		if mask[i] {
			r[i] = onTrue[i]
		} else {
			r[i] = onFalse[i]
		}
	}
	return r
}

func blendI32(mask laneMask, onTrue, onFalse laneI32) laneI32 {
	var r laneI32
	for i := range r {
		if mask[i] {
			r[i] = onTrue[i]
		} else {
			r[i] = onFalse[i]
		}
	}
	return r
}

func extractLaneI32(l laneI32, i int) int32 { return l[i] }

func setLaneI32(l *laneI32, i int, v int32) { l[i] = v }

func extractLaneF32(l laneF32, i int) float32 { return l[i] }

func setLaneF32(l *laneF32, i int, v float32) { l[i] = v }

// anyTrue reports whether any lane of the mask is set.
func anyTrue(m laneMask) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
