package corpus

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bastion-hq/gateway/pkg/retrieval"
)

// ErrInvalidSeed is returned when a seed file contains a malformed document.
var ErrInvalidSeed = errors.New("invalid seed document")

// SeedFile is the on-disk layout of a corpus seed file.
//
//	documents:
//	  - id: doc_001
//	    content: "..."
//	    metadata:
//	      source: NCSC Guidelines
//	      title: Multi-Factor Authentication Best Practices
//	      created_at: 2024-01-15T00:00:00Z
//	      classification: internal
//	      tags: [security, mfa]
type SeedFile struct {
	Documents []retrieval.Document `yaml:"documents"`
}

// LoadFile reads and validates the seed file at path.
func LoadFile(path string) ([]retrieval.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %q: %w", path, err)
	}

	docs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %q: %w", path, err)
	}
	return docs, nil
}

// Parse decodes seed file contents. Every document needs an id, non-empty
// content and a known classification; ids must be unique.
func Parse(data []byte) ([]retrieval.Document, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Documents))
	for i, doc := range file.Documents {
		switch {
		case doc.ID == "":
			return nil, fmt.Errorf("%w: documents[%d]: id is required", ErrInvalidSeed, i)
		case seen[doc.ID]:
			return nil, fmt.Errorf("%w: documents[%d]: duplicate id %q", ErrInvalidSeed, i, doc.ID)
		case strings.TrimSpace(doc.Content) == "":
			return nil, fmt.Errorf("%w: documents[%d]: content is required", ErrInvalidSeed, i)
		case !doc.Metadata.Classification.Valid():
			return nil, fmt.Errorf("%w: documents[%d]: unknown classification %q",
				ErrInvalidSeed, i, doc.Metadata.Classification)
		}
		seen[doc.ID] = true
	}

	return file.Documents, nil
}
