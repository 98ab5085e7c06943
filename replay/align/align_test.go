package align

import (
	"math"
	"testing"
)

func TestResample_Linearity(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	values := []float64{0, 10, 20, 30}
	ref := []float64{0.5, 1.5, 2.25}

	got, err := Resample(times, values, ref)
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}

	want := []float64{5, 15, 22.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("ref %v: got %v, want %v", ref[i], got[i], want[i])
		}
	}
}

func TestResample_ClampsOutsideRange(t *testing.T) {
	times := []float64{1, 2}
	values := []float64{10, 20}

	got, err := Resample(times, values, []float64{0, 3})
	if err != nil {
		t.Fatalf("Resample() error: %v", err)
	}
	if got[0] != 10 || got[1] != 20 {
		t.Errorf("got %v, want endpoint values [10 20]", got)
	}
}

func TestResample_Errors(t *testing.T) {
	tests := []struct {
		name   string
		times  []float64
		values []float64
	}{
		{"length mismatch", []float64{0, 1}, []float64{1}},
		{"single sample", []float64{0}, []float64{1}},
		{"unsorted times", []float64{1, 0}, []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resample(tt.times, tt.values, []float64{0}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
