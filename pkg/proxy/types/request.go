package types

import "time"

// AddDocumentRequest is the body of POST /api/documents.
type AddDocumentRequest struct {
	Content        string     `json:"content"`
	Title          string     `json:"title"`
	Source         string     `json:"source"`
	Classification string     `json:"classification"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// SearchRequest is the body of POST /api/documents/search. Zero TopK and
// nil MinSimilarity select the server defaults. An empty Clearance is
// public.
type SearchRequest struct {
	Query         string   `json:"query"`
	TopK          int      `json:"topK,omitempty"`
	MinSimilarity *float64 `json:"minSimilarity,omitempty"`
	Clearance     string   `json:"clearance,omitempty"`
}
