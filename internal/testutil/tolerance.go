package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSamplesEqual fails t unless got and want are identical sample for
// sample.
func RequireSamplesEqual(t *testing.T, got, want []int16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// FirstMismatch returns the first index where a and b differ, or -1.
// Returns an error if the slices differ in length.
func FirstMismatch(a, b []int16) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return i, nil
		}
	}
	return -1, nil
}

// NonZero returns the indices of all non-zero samples.
func NonZero(data []int16) []int {
	var idx []int
	for i, v := range data {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}
