package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/guardrail"
	"bastion-hq/gateway/pkg/providers"
	"bastion-hq/gateway/pkg/routing"
	"bastion-hq/gateway/pkg/telemetry/tracing"
)

// anonymousUser is recorded on error entries that have no caller identity.
const anonymousUser = "anonymous"

// errorPrompt replaces the prompt on error audit entries.
const errorPrompt = "Error occurred"

// Guardrails validates prompts and provider responses.
type Guardrails interface {
	ValidateInput(text string) guardrail.GuardrailCheck
	ValidateOutput(text string) guardrail.GuardrailCheck
}

// Augmenter prepends retrieved context to a prompt.
type Augmenter interface {
	AugmentPrompt(query string) string
}

// Router picks the provider for a request.
type Router interface {
	SelectProvider(req routing.Request) (string, error)
}

// Dispatcher calls a provider.
type Dispatcher interface {
	Call(ctx context.Context, provider, prompt string, temperature float64, maxTokens int) (providers.Response, error)
	Providers() []string
}

// AuditLog records pipeline decisions.
type AuditLog interface {
	Log(ctx context.Context, rec audit.Record) (audit.Entry, error)
}

// Services are the collaborators an Orchestrator drives. All are required.
type Services struct {
	Guardrails Guardrails
	Augmenter  Augmenter
	Router     Router
	Dispatcher Dispatcher
	Audit      AuditLog
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer notified of stage and request outcomes.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithTracer overrides the tracer used for pipeline spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithClock overrides the time source used for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator runs each gateway request through the guardrail, retrieval,
// routing, dispatch and audit stages. It holds no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	services Services
	observer Observer
	tracer   trace.Tracer
	now      func() time.Time
	logger   *slog.Logger
}

// New creates an orchestrator over the given services.
func New(services Services, opts ...Option) (*Orchestrator, error) {
	switch {
	case services.Guardrails == nil:
		return nil, errors.New("pipeline: guardrails are required")
	case services.Augmenter == nil:
		return nil, errors.New("pipeline: augmenter is required")
	case services.Router == nil:
		return nil, errors.New("pipeline: router is required")
	case services.Dispatcher == nil:
		return nil, errors.New("pipeline: dispatcher is required")
	case services.Audit == nil:
		return nil, errors.New("pipeline: audit log is required")
	}

	o := &Orchestrator{
		services: services,
		observer: NopObserver{},
		tracer:   otel.Tracer("bastion-hq/gateway/pkg/pipeline"),
		now:      time.Now,
		logger:   slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Process runs req through the state machine.
//
// The returned error is one of:
//   - *ValidationError when the request is malformed (nothing is audited)
//   - *RejectionError when a guardrail check fails (a guardrail_block entry is written)
//   - *FailureError for everything else (an error entry is written best-effort)
//
// A provider response that fails the output check is never returned.
func (o *Orchestrator) Process(ctx context.Context, req Request, client ClientInfo) (resp Response, err error) {
	r := &run{
		o:       o,
		req:     req,
		client:  client,
		start:   o.now(),
		state:   StateReceived,
		timings: make(StageTimings, len(Stages)),
		logger: o.logger.With(
			"request_id", client.RequestID,
			"user_id", req.UserID,
		),
	}

	ctx, span := o.tracer.Start(ctx, "pipeline.process", trace.WithSpanKind(trace.SpanKindInternal))
	tracing.SetRequestAttributes(span, client.RequestID, req.UserID, req.SessionID)

	defer func() {
		if p := recover(); p != nil {
			resp = Response{}
			err = r.fail(ctx, fmt.Errorf("panic: %v", p))
		}
		outcome := outcomeOf(err)
		span.SetAttributes(
			attribute.String(tracing.AttrState, r.state.String()),
			attribute.String(tracing.AttrOutcome, string(outcome)),
		)
		if outcome == OutcomeFailed {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		o.observer.RequestCompleted(outcome, o.now().Sub(r.start))
	}()

	return r.execute(ctx)
}

// run is the state of one request moving through the pipeline.
type run struct {
	o       *Orchestrator
	req     Request
	client  ClientInfo
	start   time.Time
	state   State
	timings StageTimings
	logger  *slog.Logger
}

func (r *run) execute(ctx context.Context) (Response, error) {
	if err := Validate(r.req, r.o.services.Dispatcher.Providers()); err != nil {
		r.logger.Debug("request rejected by validation", "error", err)
		return Response{}, err
	}

	// Input guardrail.
	if err := ctx.Err(); err != nil {
		return Response{}, r.fail(ctx, err)
	}
	var inputCheck guardrail.GuardrailCheck
	r.stage(ctx, StageInputCheck, func(ctx context.Context) error {
		inputCheck = r.o.services.Guardrails.ValidateInput(r.req.Prompt)
		tracing.SetGuardrailAttributes(trace.SpanFromContext(ctx), string(PhaseInput), string(inputCheck.RiskLevel), inputCheck.Passed)
		return nil
	})
	if !inputCheck.Passed {
		r.transition(StateRejectedInput)
		return Response{}, r.reject(ctx, PhaseInput, inputCheck, audit.Record{
			Prompt: sanitizedOr(inputCheck, r.req.Prompt),
			Metadata: map[string]any{
				"riskLevel": inputCheck.RiskLevel,
				"phase":     PhaseInput,
				"timestamp": r.o.now().UTC().Format(time.RFC3339Nano),
			},
		})
	}
	r.transition(StateInputChecked)
	prompt := sanitizedOr(inputCheck, r.req.Prompt)

	// Retrieval augmentation.
	if err := ctx.Err(); err != nil {
		return Response{}, r.fail(ctx, err)
	}
	var augmented string
	r.stage(ctx, StageAugment, func(context.Context) error {
		augmented = r.o.services.Augmenter.AugmentPrompt(prompt)
		return nil
	})
	r.transition(StateAugmented)

	// Routing.
	if err := ctx.Err(); err != nil {
		return Response{}, r.fail(ctx, err)
	}
	var provider string
	err := r.stage(ctx, StageRoute, func(ctx context.Context) error {
		var err error
		provider, err = r.o.services.Router.SelectProvider(routing.Request{Provider: r.req.Provider})
		return err
	})
	if err != nil {
		return Response{}, r.fail(ctx, err)
	}
	r.o.observer.ProviderSelected(provider)
	r.transition(StateRouted)

	// Dispatch.
	if err := ctx.Err(); err != nil {
		return Response{}, r.fail(ctx, err)
	}
	var llm providers.Response
	err = r.stage(ctx, StageDispatch, func(ctx context.Context) error {
		var err error
		llm, err = r.o.services.Dispatcher.Call(ctx, provider, augmented, r.req.EffectiveTemperature(), r.req.EffectiveMaxTokens())
		r.o.observer.ProviderCalled(provider, llm.Latency, err)
		if err == nil {
			tracing.SetProviderAttributes(trace.SpanFromContext(ctx), provider, llm.Model, llm.TokensUsed)
		}
		return err
	})
	if err != nil {
		return Response{}, r.fail(ctx, err)
	}
	r.transition(StateDispatched)

	// Output guardrail.
	if err := ctx.Err(); err != nil {
		return Response{}, r.fail(ctx, err)
	}
	var outputCheck guardrail.GuardrailCheck
	r.stage(ctx, StageOutputCheck, func(ctx context.Context) error {
		outputCheck = r.o.services.Guardrails.ValidateOutput(llm.Text)
		tracing.SetGuardrailAttributes(trace.SpanFromContext(ctx), string(PhaseOutput), string(outputCheck.RiskLevel), outputCheck.Passed)
		return nil
	})
	if !outputCheck.Passed {
		r.transition(StateRejectedOutput)
		return Response{}, r.reject(ctx, PhaseOutput, outputCheck, audit.Record{
			Provider: provider,
			Prompt:   prompt,
			Response: llm.Text,
			Metadata: map[string]any{
				"riskLevel": outputCheck.RiskLevel,
				"phase":     PhaseOutput,
			},
		})
	}
	r.transition(StateOutputChecked)
	final := sanitizedOr(outputCheck, llm.Text)

	// Success audit. A failure here fails the request.
	err = r.stage(ctx, StageAudit, func(ctx context.Context) error {
		metadata := map[string]any{
			"model":            llm.Model,
			"tokensUsed":       llm.TokensUsed,
			"latencyMs":        llm.LatencyMs(),
			"totalLatencyMs":   r.o.now().Sub(r.start).Milliseconds(),
			"stageLatencyMs":   r.timings.Milliseconds(),
			"inputValidation":  map[string]any{"riskLevel": inputCheck.RiskLevel},
			"outputValidation": map[string]any{"riskLevel": outputCheck.RiskLevel},
			"requestId":        r.client.RequestID,
		}
		if r.req.SessionID != "" {
			metadata["sessionId"] = r.req.SessionID
		}
		return r.writeAudit(ctx, audit.Record{
			UserID:   r.req.UserID,
			Action:   audit.ActionResponse,
			Provider: provider,
			Prompt:   prompt,
			Response: final,
			Metadata: metadata,
		})
	})
	if err != nil {
		return Response{}, r.fail(ctx, err)
	}
	r.transition(StateLogged)

	resp := Response{
		Response:   final,
		Provider:   llm.Provider,
		Model:      llm.Model,
		TokensUsed: llm.TokensUsed,
		LatencyMs:  r.o.now().Sub(r.start).Milliseconds(),
		Guardrails: GuardrailSummary{
			InputRiskLevel:  inputCheck.RiskLevel,
			OutputRiskLevel: outputCheck.RiskLevel,
		},
	}
	r.transition(StateResponded)

	r.logger.Info("request completed",
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens_used", resp.TokensUsed,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

// stage runs fn inside a child span and records its duration.
func (r *run) stage(ctx context.Context, stage Stage, fn func(ctx context.Context) error) error {
	ctx, span := r.o.tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	started := r.o.now()
	err := fn(ctx)
	elapsed := r.o.now().Sub(started)

	r.timings[stage] = elapsed
	r.o.observer.StageCompleted(stage, elapsed)
	tracing.SetDurationAttribute(span, elapsed.Milliseconds())
	if err != nil {
		tracing.SetErrorAttributes(span, err, errorType(err))
	}
	return err
}

func (r *run) transition(to State) {
	r.logger.Debug("pipeline transition", "from", r.state.String(), "to", to.String())
	r.state = to
}

// reject audits a guardrail block and returns the rejection. A failed audit
// write is logged and does not change the result.
func (r *run) reject(ctx context.Context, phase Phase, check guardrail.GuardrailCheck, rec audit.Record) error {
	r.o.observer.GuardrailBlocked(phase, check.RiskLevel)
	r.logger.Warn("guardrail rejected request",
		"phase", phase,
		"risk_level", check.RiskLevel,
		"violations", check.Violations,
	)

	rec.UserID = r.req.UserID
	rec.Action = audit.ActionGuardrailBlock
	rec.Violations = check.Violations
	if err := r.writeAudit(ctx, rec); err != nil {
		r.logger.Error("failed to audit guardrail block", "phase", phase, "audit_error", err)
	}

	return &RejectionError{Phase: phase, Check: check}
}

// fail moves the request to StateFailed, writes a best-effort error entry and
// returns the failure.
func (r *run) fail(ctx context.Context, cause error) error {
	failedAt := r.state
	r.transition(StateFailed)
	r.logger.Error("pipeline failed", "state", failedAt.String(), "error", cause)

	userID := r.req.UserID
	if userID == "" {
		userID = anonymousUser
	}
	err := r.writeAudit(ctx, audit.Record{
		UserID: userID,
		Action: audit.ActionError,
		Prompt: errorPrompt,
		Metadata: map[string]any{
			"error":     cause.Error(),
			"stage":     failedAt.String(),
			"requestId": r.client.RequestID,
		},
	})
	if err != nil {
		r.logger.Error("failed to audit pipeline error", "audit_error", err)
	}

	return &FailureError{State: failedAt, Cause: cause}
}

// writeAudit stamps client info on rec and writes it. The write is detached
// from ctx cancellation so a disconnecting caller still leaves a trail.
func (r *run) writeAudit(ctx context.Context, rec audit.Record) error {
	rec.IPAddress = r.client.IPAddress
	rec.UserAgent = r.client.UserAgent

	_, err := r.o.services.Audit.Log(context.WithoutCancel(ctx), rec)
	r.o.observer.AuditWritten(rec.Action, err)
	return err
}

func sanitizedOr(check guardrail.GuardrailCheck, fallback string) string {
	if check.SanitizedText != "" {
		return check.SanitizedText
	}
	return fallback
}

func outcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var rejection *RejectionError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return OutcomeInvalid
	case errors.As(err, &rejection):
		if rejection.Phase == PhaseOutput {
			return OutcomeRejectedOutput
		}
		return OutcomeRejectedInput
	default:
		return OutcomeFailed
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, routing.ErrNoProviderAvailable):
		return "no_provider"
	case errors.Is(err, providers.ErrUnknownProvider):
		return "unknown_provider"
	case errors.Is(err, providers.ErrProviderTimeout):
		return "provider_timeout"
	case errors.Is(err, audit.ErrAuditWrite):
		return "audit_write"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
