package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp/core"
)

// RequireNearlyEqual fails tb unless core.NearlyEqual(got, want, eps).
func RequireNearlyEqual(tb testing.TB, what string, got, want, eps float64) {
	tb.Helper()
	if !core.NearlyEqual(got, want, eps) {
		tb.Fatalf("%s = %v, want %v (eps %v)", what, got, want, eps)
	}
}

// RequireSliceNearlyEqual fails tb if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()
	if len(got) != len(want) {
		tb.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			tb.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails tb if any element is NaN or Inf.
func RequireFinite(tb testing.TB, data []float64) {
	tb.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails tb if any element lies outside [-limit, limit].
func RequireBounded(tb testing.TB, data []float64, limit float64) {
	tb.Helper()
	for i, v := range data {
		if !(math.Abs(v) <= limit) {
			tb.Fatalf("index %d: %v outside [-%v, %v]", i, v, limit, limit)
		}
	}
}

// PeakAbs returns the largest absolute value in data.
func PeakAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}
