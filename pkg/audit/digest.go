package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// ComputeDigest returns the hex SHA-256 of the canonical JSON of e with its
// Digest field cleared.
func ComputeDigest(e *Entry) (string, error) {
	view := *e
	view.Digest = ""

	raw, err := json.Marshal(&view)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize entry: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
