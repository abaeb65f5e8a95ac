package retrieval

import (
	"math"
	"testing"
)

func TestRollingHash(t *testing.T) {
	tests := []struct {
		input string
		want  int32
	}{
		{"", 0},
		{"a", 97},
		{"ab", 3105},
		{"hello", 99162322},
		{"polygenelubricants", math.MinInt32},
	}

	for _, tt := range tests {
		if got := RollingHash(tt.input); got != tt.want {
			t.Errorf("RollingHash(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestHashEmbedder_Embed(t *testing.T) {
	embedder := NewHashEmbedder(0)

	if embedder.Dimension() != EmbeddingDimension {
		t.Fatalf("Dimension() = %d, want %d", embedder.Dimension(), EmbeddingDimension)
	}

	a := embedder.Embed("multi-factor authentication")
	b := embedder.Embed("multi-factor authentication")

	if len(a) != EmbeddingDimension {
		t.Fatalf("len(Embed()) = %d, want %d", len(a), EmbeddingDimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embed() not deterministic at %d: %v != %v", i, a[i], b[i])
		}
		if a[i] < 0 || a[i] > 1 {
			t.Fatalf("Embed()[%d] = %v, want within [0,1]", i, a[i])
		}
	}

	seed := float64(RollingHash("multi-factor authentication"))
	if want := math.Sin(seed)*0.5 + 0.5; a[0] != want {
		t.Errorf("Embed()[0] = %v, want %v", a[0], want)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"dimension mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
