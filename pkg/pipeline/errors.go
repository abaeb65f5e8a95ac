package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"bastion-hq/gateway/pkg/guardrail"
)

var (
	// ErrInvalidRequest is returned when a request fails shape validation.
	ErrInvalidRequest = errors.New("validation error")

	// ErrGuardrailRejected is returned when an input or output check fails.
	ErrGuardrailRejected = errors.New("guardrail rejected request")

	// ErrPipelineFailed is returned for every unexpected failure.
	ErrPipelineFailed = errors.New("internal server error")
)

// ValidationError lists every problem found in a malformed request.
type ValidationError struct {
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrInvalidRequest.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, strings.Join(e.Details, "; "))
}

// Is implements error matching for errors.Is().
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// RejectionError carries the failed guardrail check of a rejected request.
type RejectionError struct {
	Phase Phase
	Check guardrail.GuardrailCheck
}

// Message returns the caller-facing summary of the rejection.
func (e *RejectionError) Message() string {
	if e.Phase == PhaseOutput {
		return "Output validation failed"
	}
	return "Input validation failed"
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s (risk %s): %s", e.Message(), e.Check.RiskLevel, strings.Join(e.Check.Violations, "; "))
}

// Is implements error matching for errors.Is().
func (e *RejectionError) Is(target error) bool {
	return target == ErrGuardrailRejected
}

// FailureError records an unexpected failure and the state it interrupted.
// The cause is for operators; callers only ever see ErrPipelineFailed's text.
type FailureError struct {
	State State
	Cause error
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.State, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *FailureError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *FailureError) Is(target error) bool {
	return target == ErrPipelineFailed
}
