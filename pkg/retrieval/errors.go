package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientClearance is returned when a caller's clearance ranks
	// below a document's classification.
	ErrInsufficientClearance = errors.New("insufficient clearance level to access this document")

	// ErrDocumentNotFound is returned when no document has the requested id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidClassification is returned for unknown classification labels.
	ErrInvalidClassification = errors.New("invalid classification")
)

// ClearanceError records a denied document access.
type ClearanceError struct {
	DocumentID     string
	Classification Classification
	Clearance      Classification
}

// Error implements the error interface.
func (e *ClearanceError) Error() string {
	return fmt.Sprintf("%s: document %s is %s, caller clearance is %q",
		ErrInsufficientClearance, e.DocumentID, e.Classification, e.Clearance)
}

// Is implements error matching for errors.Is().
func (e *ClearanceError) Is(target error) bool {
	return target == ErrInsufficientClearance
}
