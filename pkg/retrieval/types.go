package retrieval

import (
	"fmt"
	"time"
)

// Classification is the sensitivity label of a document.
type Classification string

const (
	Public       Classification = "public"
	Internal     Classification = "internal"
	Confidential Classification = "confidential"
	Secret       Classification = "secret"
)

// Rank orders classifications public < internal < confidential < secret.
// Unknown values rank -1, below every valid level.
func (c Classification) Rank() int {
	switch c {
	case Public:
		return 0
	case Internal:
		return 1
	case Confidential:
		return 2
	case Secret:
		return 3
	default:
		return -1
	}
}

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	return c.Rank() >= 0
}

// ParseClassification parses a classification or clearance string.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassification, s)
	}
	return c, nil
}

// Metadata describes a document's provenance and sensitivity.
type Metadata struct {
	Source         string         `json:"source" yaml:"source"`
	Title          string         `json:"title" yaml:"title"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"created_at"`
	Classification Classification `json:"classification" yaml:"classification"`
	Tags           []string       `json:"tags" yaml:"tags"`
}

// Document is one entry of the retrieval corpus.
type Document struct {
	ID        string    `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	Embedding []float64 `json:"embedding,omitempty" yaml:"-"`
	Metadata  Metadata  `json:"metadata" yaml:"metadata"`
}

// clone returns a deep copy of the document.
func (d Document) clone() Document {
	out := d
	if d.Embedding != nil {
		out.Embedding = make([]float64, len(d.Embedding))
		copy(out.Embedding, d.Embedding)
	}
	if d.Metadata.Tags != nil {
		out.Metadata.Tags = make([]string, len(d.Metadata.Tags))
		copy(out.Metadata.Tags, d.Metadata.Tags)
	}
	return out
}

// SearchResult is one ranked search hit.
type SearchResult struct {
	Document       Document `json:"document"`
	Similarity     float64  `json:"similarity"`
	RelevanceScore float64  `json:"relevanceScore"`
}
