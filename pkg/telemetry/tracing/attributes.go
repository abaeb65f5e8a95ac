package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Gateway-specific keys use the "bastion.*" namespace.
const (
	AttrRequestID = "bastion.request_id"
	AttrUser      = "bastion.user"
	AttrSession   = "bastion.session"

	AttrProvider   = "bastion.provider"
	AttrModel      = "bastion.model"
	AttrTokensUsed = "bastion.tokens.used"

	AttrStage     = "bastion.stage"
	AttrState     = "bastion.state"
	AttrOutcome   = "bastion.outcome"
	AttrPhase     = "bastion.guardrail.phase"
	AttrRiskLevel = "bastion.guardrail.risk_level"
	AttrPassed    = "bastion.guardrail.passed"

	AttrAuditAction = "bastion.audit.action"

	AttrErrorType    = "bastion.error.type"
	AttrErrorMessage = "error.message"
	AttrDuration     = "bastion.duration_ms"
)

// SetRequestAttributes sets request identity attributes on a span. Empty
// values are skipped.
func SetRequestAttributes(span trace.Span, requestID, user, session string) {
	attrs := make([]attribute.KeyValue, 0, 3)
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if user != "" {
		attrs = append(attrs, attribute.String(AttrUser, user))
	}
	if session != "" {
		attrs = append(attrs, attribute.String(AttrSession, session))
	}
	span.SetAttributes(attrs...)
}

// SetProviderAttributes sets provider-related attributes on a span.
//
// Example:
//
//	SetProviderAttributes(span, "gemini", "gemini-pro", 412)
func SetProviderAttributes(span trace.Span, provider, model string, tokensUsed int) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
		attribute.Int(AttrTokensUsed, tokensUsed),
	)
}

// SetGuardrailAttributes records the result of a guardrail check.
func SetGuardrailAttributes(span trace.Span, phase, riskLevel string, passed bool) {
	span.SetAttributes(
		attribute.String(AttrPhase, phase),
		attribute.String(AttrRiskLevel, riskLevel),
		attribute.Bool(AttrPassed, passed),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "no_provider")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span in milliseconds.
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// AddEvent adds a named event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
