//go:build avx512

package meshdist

// simdWidth is the compile-time SIMD packing width of §3/§6/§9. This file
// selects the 16-lane "AVX-512" width; the default build
// (simdwidth_portable.go) selects 4 lanes instead.
const simdWidth = 16
