//go:build !avx512

package meshdist

// simdWidth is the compile-time SIMD packing width of §3/§6/§9. This file
// selects the 4-lane "NEON/AVX portable" width; build with -tags avx512 to
// select the 16-lane width instead (simdwidth_avx512.go). A structure built
// under one width cannot be consumed under the other — the width is baked
// into every PackedEdge/PackedFace array size at compile time.
const simdWidth = 4
