package embedding

import "testing"

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float64{1, 2, 3}
	if got := Cosine(v, v); got < 0.999 || got > 1.001 {
		t.Errorf("Cosine(v, v) = %v, want ~1", got)
	}
}

func TestCosineOrthogonalVectors(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine(orthogonal) = %v, want 0", got)
	}
}

func TestCosineEmptyOrMismatched(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
	}{
		{"both empty", nil, nil},
		{"one empty", []float64{1, 2}, nil},
		{"mismatched dims", []float64{1, 2}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got != 0 {
				t.Errorf("Cosine(%v, %v) = %v, want 0", tt.a, tt.b, got)
			}
		})
	}
}
