package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seq(n int, start float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)
	}
	return out
}

func TestFromPlanesAndAt(t *testing.T) {
	tt, err := FromPlanes(2, 3, seq(6, 0), seq(6, 100))
	if err != nil {
		t.Fatalf("FromPlanes error: %v", err)
	}
	if diff := cmp.Diff([]int{2, 2, 3}, tt.Shape()); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	if got := tt.At(1, 1, 2); got != 105 {
		t.Fatalf("At(1,1,2) = %v, want 105", got)
	}

	if _, err := FromPlanes(2, 3, seq(5, 0)); err == nil {
		t.Fatalf("expected error for short plane")
	}
}

func TestConcatOrderAndMismatch(t *testing.T) {
	a, _ := FromPlanes(1, 2, seq(2, 0))
	b, _ := FromPlanes(1, 2, seq(2, 10), seq(2, 20))
	out, err := Concat(a, b)
	if err != nil {
		t.Fatalf("Concat error: %v", err)
	}
	if out.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", out.Channels)
	}
	if diff := cmp.Diff([]float32{0, 1, 10, 11, 20, 21}, out.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	c := Zeros(1, 2, 2)
	if _, err := Concat(a, c); err == nil {
		t.Fatalf("expected error for mismatched spatial shapes")
	}
}

func TestCrop(t *testing.T) {
	tt, _ := FromPlanes(3, 4, seq(12, 0), seq(12, 100))
	out, err := tt.Crop(1, 1, 2, 2)
	if err != nil {
		t.Fatalf("Crop error: %v", err)
	}
	want := []float32{5, 6, 9, 10, 105, 106, 109, 110}
	if diff := cmp.Diff(want, out.Data); diff != "" {
		t.Fatalf("crop mismatch (-want +got):\n%s", diff)
	}

	if _, err := tt.Crop(2, 0, 2, 4); err == nil {
		t.Fatalf("expected error for window past bottom edge")
	}
}
