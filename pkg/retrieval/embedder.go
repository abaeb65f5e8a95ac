package retrieval

import (
	"math"
	"unicode/utf16"
)

// EmbeddingDimension is the vector length produced by HashEmbedder.
const EmbeddingDimension = 384

// TextEmbedder turns text into a fixed-length vector.
type TextEmbedder interface {
	Embed(text string) []float64
	Dimension() int
}

// HashEmbedder derives a reproducible pseudo-embedding from a 32-bit rolling
// hash of the text. Component i is sin(hash+i)*0.5 + 0.5.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a hash embedder of the given dimension.
// A non-positive dimension selects EmbeddingDimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = EmbeddingDimension
	}
	return &HashEmbedder{dimension: dimension}
}

// Dimension returns the vector length.
func (h *HashEmbedder) Dimension() int {
	return h.dimension
}

// Embed returns the pseudo-embedding of text.
func (h *HashEmbedder) Embed(text string) []float64 {
	seed := float64(RollingHash(text))
	vec := make([]float64, h.dimension)
	for i := range vec {
		vec[i] = math.Sin(seed+float64(i))*0.5 + 0.5
	}
	return vec
}

// RollingHash computes hash = hash*31 + c over the UTF-16 code units of s
// with 32-bit signed wraparound.
func RollingHash(s string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(s)) {
		hash = (hash << 5) - hash + int32(unit)
	}
	return hash
}

// CosineSimilarity returns the normalized dot product of a and b. Vectors of
// different length, and zero vectors, have similarity 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
