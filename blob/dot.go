package blob

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
	"gonum.org/v1/gonum/floats"
)

// dotKernel computes the float32 dot product. Picked once at init: wider
// vector units profit from more parallel accumulators.
var dotKernel func(a, b []float32) float32

func init() {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		dotKernel = dot8
	case cpuid.CPU.Supports(cpuid.AVX2):
		dotKernel = dot4
	default:
		dotKernel = dot1
	}
}

// Dot returns the dot product of two equal-length vectors. It panics if the
// lengths differ.
func Dot[T Numeric](a, b []T) T {
	if len(a) != len(b) {
		panic(fmt.Sprintf("blob: dot product length mismatch: %d vs %d", len(a), len(b)))
	}
	switch av := any(a).(type) {
	case []float64:
		return T(floats.Dot(av, any(b).([]float64)))
	case []float32:
		return T(dotKernel(av, any(b).([]float32)))
	}
	panic("blob: unsupported element type")
}

func dot1(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func dot4(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(a) - len(a)%4
	for i := 0; i < n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	sum := s0 + s1 + s2 + s3
	for i := n; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func dot8(a, b []float32) float32 {
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	n := len(a) - len(a)%8
	for i := 0; i < n; i += 8 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
		s4 += a[i+4] * b[i+4]
		s5 += a[i+5] * b[i+5]
		s6 += a[i+6] * b[i+6]
		s7 += a[i+7] * b[i+7]
	}
	sum := s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
	for i := n; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}
