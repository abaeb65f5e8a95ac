package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/guardrail"
	"bastion-hq/gateway/pkg/pipeline"
	"bastion-hq/gateway/pkg/proxy/types"
	"bastion-hq/gateway/pkg/retrieval"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        &pipeline.ValidationError{Details: []string{"prompt: must be a non-empty string"}},
			wantStatus: http.StatusBadRequest,
			wantError:  types.MessageInvalidRequest,
		},
		{
			name: "input rejection",
			err: &pipeline.RejectionError{
				Phase: pipeline.PhaseInput,
				Check: guardrail.GuardrailCheck{RiskLevel: guardrail.RiskCritical, Violations: []string{"Potential prompt injection detected"}},
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Input validation failed",
		},
		{
			name:       "query error",
			err:        audit.NewQueryError(&audit.Query{}, errors.New("limit must be >= 0, got -1")),
			wantStatus: http.StatusBadRequest,
			wantError:  types.MessageInvalidRequest,
		},
		{
			name:       "clearance",
			err:        &retrieval.ClearanceError{DocumentID: "doc_1", Classification: retrieval.Secret, Clearance: retrieval.Public},
			wantStatus: http.StatusForbidden,
			wantError:  types.MessageForbidden,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: doc_9", retrieval.ErrDocumentNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  types.MessageNotFound,
		},
		{
			name:       "pipeline failure hides cause",
			err:        &pipeline.FailureError{State: pipeline.StateDispatched, Cause: errors.New("db password=hunter2")},
			wantStatus: http.StatusInternalServerError,
			wantError:  types.MessageInternalError,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  types.MessageInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := HandleError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if body.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestWriteError_Rejection(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &pipeline.RejectionError{
		Phase: pipeline.PhaseOutput,
		Check: guardrail.GuardrailCheck{RiskLevel: guardrail.RiskHigh, Violations: []string{"Sensitive information detected in response"}},
	}

	status, writeErr := WriteError(rec, err)
	if writeErr != nil {
		t.Fatalf("WriteError() error = %v", writeErr)
	}
	if status != http.StatusBadRequest || rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d/%d, want 400", status, rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Output validation failed" || body["riskLevel"] != "high" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["details"]; ok {
		t.Errorf("body has details: %v", body)
	}
}
