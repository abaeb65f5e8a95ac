package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/proxy"
	"bastion-hq/gateway/pkg/proxy/types"
)

// AuditReader answers audit log queries.
type AuditReader interface {
	QueryLogs(ctx context.Context, q audit.Query) ([]audit.Entry, error)
	GetStatistics(ctx context.Context, userID string) (audit.Statistics, error)
}

// AuditHandler serves the audit read endpoints.
type AuditHandler struct {
	reader       AuditReader
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewAuditHandler creates the audit handler. Non-positive limits select
// audit.DefaultQueryLimit and audit.MaxQueryLimit.
func NewAuditHandler(reader AuditReader, defaultLimit, maxLimit int) *AuditHandler {
	if defaultLimit <= 0 {
		defaultLimit = audit.DefaultQueryLimit
	}
	if maxLimit <= 0 {
		maxLimit = audit.MaxQueryLimit
	}
	return &AuditHandler{
		reader:       reader,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default().With("component", "handlers.audit"),
	}
}

// Logs serves GET /api/audit/logs?userId=&action=&start=&end=&limit=.
func (h *AuditHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries, err := h.reader.QueryLogs(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(r.Context(), h.logger, w, http.StatusOK, types.LogsResponse{Logs: entries})
}

// Stats serves GET /api/audit/stats?userId=.
func (h *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.GetStatistics(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if stats.RecentViolations == nil {
		stats.RecentViolations = []audit.Entry{}
	}

	writeJSON(r.Context(), h.logger, w, http.StatusOK, stats)
}

// parseQuery builds an audit query from URL parameters. Every malformed
// parameter is reported in one *pipeline.ValidationError.
func (h *AuditHandler) parseQuery(values url.Values) (audit.Query, error) {
	q := audit.Query{
		UserID: values.Get("userId"),
		Limit:  h.defaultLimit,
	}
	var details []string

	if s := values.Get("action"); s != "" {
		action, err := audit.ParseAction(s)
		if err != nil {
			details = append(details, "action: "+err.Error())
		}
		q.Action = action
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start", &q.Start}, {"end", &q.End}} {
		s := values.Get(p.name)
		if s == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			details = append(details, fmt.Sprintf("%s: must be an RFC 3339 timestamp", p.name))
			continue
		}
		*p.dst = &ts
	}

	if s := values.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		switch {
		case err != nil || limit <= 0:
			details = append(details, "limit: must be a positive integer")
		case limit > h.maxLimit:
			details = append(details, fmt.Sprintf("limit: must be at most %d", h.maxLimit))
		default:
			q.Limit = limit
		}
	}

	if len(details) > 0 {
		return audit.Query{}, &pipeline.ValidationError{Details: details}
	}
	return q, nil
}

func (h *AuditHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := proxy.HandleError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "audit query failed", "error", err)
	}
	writeJSON(r.Context(), h.logger, w, status, body)
}

func writeJSON(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, status int, body any) {
	if err := proxy.WriteJSONResponse(w, status, body); err != nil {
		logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
