package handlers

import (
	"log/slog"
	"net/http"

	"bastion-hq/gateway/pkg/proxy/types"
	"bastion-hq/gateway/pkg/routing"
)

// ProviderHealthSource returns a snapshot of the routing table.
type ProviderHealthSource interface {
	GetProviderHealth() []routing.ProviderStatus
}

// ProvidersHandler serves GET /api/providers/health.
type ProvidersHandler struct {
	source ProviderHealthSource
	logger *slog.Logger
}

// NewProvidersHandler creates the provider health handler.
func NewProvidersHandler(source ProviderHealthSource) *ProvidersHandler {
	return &ProvidersHandler{
		source: source,
		logger: slog.Default().With("component", "handlers.providers"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	statuses := h.source.GetProviderHealth()
	if statuses == nil {
		statuses = []routing.ProviderStatus{}
	}
	writeJSON(r.Context(), h.logger, w, http.StatusOK, types.ProvidersResponse{Providers: statuses})
}
