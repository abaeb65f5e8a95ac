package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/proxy"
	"bastion-hq/gateway/pkg/proxy/middleware"
	"bastion-hq/gateway/pkg/proxy/types"
	"bastion-hq/gateway/pkg/telemetry/logging"
)

// Processor runs a gateway request through the pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request, client pipeline.ClientInfo) (pipeline.Response, error)
}

// GatewayHandler serves POST /api/gateway.
type GatewayHandler struct {
	processor    Processor
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewGatewayHandler creates the gateway handler. maxBodyBytes of zero
// selects proxy.DefaultMaxBodyBytes.
func NewGatewayHandler(processor Processor, maxBodyBytes int64) *GatewayHandler {
	return &GatewayHandler{
		processor:    processor,
		maxBodyBytes: maxBodyBytes,
		logger:       slog.Default().With("component", "handlers.gateway"),
	}
}

// ServeHTTP implements http.Handler.
func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.write(ctx, w, http.StatusMethodNotAllowed, types.NewErrorResponse(types.MessageMethodNotAllowed))
		return
	}

	req, err := proxy.ParseGatewayRequest(r, h.maxBodyBytes)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	ctx = logging.WithUser(ctx, req.UserID)
	if req.SessionID != "" {
		ctx = logging.WithSession(ctx, req.SessionID)
	}

	client := proxy.ClientInfo(r, middleware.GetRequestID(ctx))
	resp, err := h.processor.Process(ctx, req, client)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.write(ctx, w, http.StatusOK, types.NewSuccessResponse(resp))
}

func (h *GatewayHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := proxy.HandleError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "gateway request failed", "error", err)
	}
	h.write(ctx, w, status, body)
}

func (h *GatewayHandler) write(ctx context.Context, w http.ResponseWriter, status int, body any) {
	if err := proxy.WriteJSONResponse(w, status, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
