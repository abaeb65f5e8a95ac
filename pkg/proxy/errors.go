package proxy

import (
	"errors"
	"net/http"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/proxy/types"
	"bastion-hq/gateway/pkg/retrieval"
)

// HandleError maps err to an HTTP status and caller-facing body. Anything
// not recognized becomes a generic 500 so internal messages never leak.
func HandleError(err error) (int, *types.ErrorResponse) {
	var validationErr *pipeline.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, types.NewValidationErrorResponse(validationErr.Details)
	}

	var rejection *pipeline.RejectionError
	if errors.As(err, &rejection) {
		return http.StatusBadRequest, types.NewRejectionResponse(
			rejection.Message(),
			rejection.Check.Violations,
			string(rejection.Check.RiskLevel),
		)
	}

	var queryErr *audit.QueryError
	if errors.As(err, &queryErr) {
		return http.StatusBadRequest, types.NewValidationErrorResponse([]string{queryErr.Cause.Error()})
	}

	switch {
	case errors.Is(err, retrieval.ErrInsufficientClearance):
		return http.StatusForbidden, types.NewErrorResponse(types.MessageForbidden)
	case errors.Is(err, retrieval.ErrDocumentNotFound):
		return http.StatusNotFound, types.NewErrorResponse(types.MessageNotFound)
	case errors.Is(err, retrieval.ErrInvalidClassification), errors.Is(err, retrieval.ErrEmptyContent):
		return http.StatusBadRequest, types.NewValidationErrorResponse([]string{err.Error()})
	}

	return http.StatusInternalServerError, types.NewInternalErrorResponse()
}
