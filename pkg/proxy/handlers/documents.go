package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/proxy"
	"bastion-hq/gateway/pkg/proxy/types"
	"bastion-hq/gateway/pkg/retrieval"
)

// DocumentStore is the retrieval surface the document endpoints use.
type DocumentStore interface {
	GetDocument(id string, clearance retrieval.Classification) (retrieval.Document, error)
	AddDocument(ctx context.Context, doc retrieval.Document) (retrieval.Document, error)
	SearchWithClearance(query string, topK int, minSimilarity float64, clearance retrieval.Classification) []retrieval.SearchResult
}

// DocumentsHandler serves the document endpoints.
type DocumentsHandler struct {
	store         DocumentStore
	minSimilarity float64
	maxBodyBytes  int64
	logger        *slog.Logger
}

// NewDocumentsHandler creates the documents handler. minSimilarity is the
// search floor used when a request leaves it unset.
func NewDocumentsHandler(store DocumentStore, minSimilarity float64, maxBodyBytes int64) *DocumentsHandler {
	if minSimilarity <= 0 {
		minSimilarity = retrieval.DefaultMinSimilarity
	}
	return &DocumentsHandler{
		store:         store,
		minSimilarity: minSimilarity,
		maxBodyBytes:  maxBodyBytes,
		logger:        slog.Default().With("component", "handlers.documents"),
	}
}

// Get serves GET /api/documents/{id}?clearance=. A missing clearance is
// treated as public.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	clearance, err := parseClearance(r.URL.Query().Get("clearance"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := h.store.GetDocument(id, clearance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(r.Context(), h.logger, w, http.StatusOK, doc)
}

// Add serves POST /api/documents.
func (h *DocumentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req types.AddDocumentRequest
	if err := proxy.DecodeJSON(r, h.maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var details []string
	if strings.TrimSpace(req.Content) == "" {
		details = append(details, "content: must be a non-empty string")
	}
	classification, err := retrieval.ParseClassification(req.Classification)
	if err != nil {
		details = append(details, "classification: must be one of public, internal, confidential, secret")
	}
	if len(details) > 0 {
		h.writeError(w, r, &pipeline.ValidationError{Details: details})
		return
	}

	doc := retrieval.Document{
		Content: req.Content,
		Metadata: retrieval.Metadata{
			Source:         req.Source,
			Title:          req.Title,
			Classification: classification,
			Tags:           req.Tags,
		},
	}
	if req.CreatedAt != nil {
		doc.Metadata.CreatedAt = req.CreatedAt.UTC()
	}

	stored, err := h.store.AddDocument(r.Context(), doc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(r.Context(), h.logger, w, http.StatusCreated, stored)
}

// Search serves POST /api/documents/search.
func (h *DocumentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := proxy.DecodeJSON(r, h.maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var details []string
	if strings.TrimSpace(req.Query) == "" {
		details = append(details, "query: must be a non-empty string")
	}
	if req.TopK < 0 {
		details = append(details, "topK: must be a positive integer")
	}
	if req.MinSimilarity != nil && (*req.MinSimilarity < -1 || *req.MinSimilarity > 1) {
		details = append(details, "minSimilarity: must be between -1 and 1")
	}
	clearance := retrieval.Public
	if req.Clearance != "" {
		c, err := retrieval.ParseClassification(req.Clearance)
		if err != nil {
			details = append(details, "clearance: "+err.Error())
		}
		clearance = c
	}
	if len(details) > 0 {
		h.writeError(w, r, &pipeline.ValidationError{Details: details})
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = retrieval.DefaultTopK
	}
	minSimilarity := h.minSimilarity
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}

	results := h.store.SearchWithClearance(req.Query, topK, minSimilarity, clearance)
	writeJSON(r.Context(), h.logger, w, http.StatusOK, types.SearchResponse{Results: results})
}

// parseClearance reads a clearance parameter. Empty means public.
func parseClearance(s string) (retrieval.Classification, error) {
	if s == "" {
		return retrieval.Public, nil
	}
	c, err := retrieval.ParseClassification(s)
	if err != nil {
		return "", &pipeline.ValidationError{Details: []string{"clearance: " + err.Error()}}
	}
	return c, nil
}

func (h *DocumentsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := proxy.HandleError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "document request failed", "error", err)
	}
	writeJSON(r.Context(), h.logger, w, status, body)
}
