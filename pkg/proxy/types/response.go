package types

import (
	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/retrieval"
	"bastion-hq/gateway/pkg/routing"
)

// SuccessResponse wraps a successful gateway result.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// NewSuccessResponse wraps data in the success envelope.
func NewSuccessResponse(data any) *SuccessResponse {
	return &SuccessResponse{Success: true, Data: data}
}

// LogsResponse is the body of GET /api/audit/logs.
type LogsResponse struct {
	Logs []audit.Entry `json:"logs"`
}

// ProvidersResponse is the body of GET /api/providers/health.
type ProvidersResponse struct {
	Providers []routing.ProviderStatus `json:"providers"`
}

// SearchResponse is the body of POST /api/documents/search.
type SearchResponse struct {
	Results []retrieval.SearchResult `json:"results"`
}
