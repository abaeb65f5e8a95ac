package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"bastion-hq/gateway/pkg/config"
)

func newTestTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	cfg := &config.TracingConfig{Enabled: true, Sampler: SamplerAlways, ServiceName: "test-service"}
	tracer, err := newWithExporter(cfg, "test", exporter)
	if err != nil {
		t.Fatalf("newWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func flushed(t *testing.T, tracer *Tracer, exporter *tracetest.InMemoryExporter) tracetest.SpanStubs {
	t.Helper()
	if err := tracer.provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	return exporter.GetSpans()
}

// TestNew tests the creation of a new tracer
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "disabled tracing",
			config:  &config.TracingConfig{Enabled: false, ServiceName: "test-service"},
			wantErr: false,
		},
		{
			name: "enabled with ratio sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				Insecure:    true,
				Timeout:     time.Second,
			},
			wantErr: false,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "invalid",
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				Insecure:    true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("tracer.Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = tracer.Shutdown(ctx)
		})
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if TraceID(ctx) != "" {
		t.Error("expected empty trace ID for noop span")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_StartExportsSpans(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	ctx, parent := tracer.Start(context.Background(), "pipeline.process")
	_, child := tracer.Tracer().Start(ctx, "pipeline.route")
	child.End()
	parent.End()

	spans := flushed(t, tracer, exporter)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}
	route, process := byName["pipeline.route"], byName["pipeline.process"]
	if route.Parent.SpanID() != process.SpanContext.SpanID() {
		t.Error("child span is not parented to the process span")
	}
	if route.SpanContext.TraceID() != process.SpanContext.TraceID() {
		t.Error("child span has a different trace ID")
	}
}

func TestTraceAndSpanID(t *testing.T) {
	if TraceID(context.Background()) != "" || SpanID(context.Background()) != "" {
		t.Error("expected empty IDs without a span")
	}

	tracer, _ := newTestTracer(t)
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()

	if got := TraceID(ctx); len(got) != 32 {
		t.Errorf("TraceID() = %q, want 32 hex chars", got)
	}
	if got := SpanID(ctx); len(got) != 16 {
		t.Errorf("SpanID() = %q, want 16 hex chars", got)
	}
	if SpanFromContext(ctx) != span {
		t.Error("SpanFromContext() did not return the active span")
	}
}

func TestSetErrorAndStatus(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, failed := tracer.Start(context.Background(), "failed")
	SetError(failed, errors.New("boom"))
	SetError(failed, nil)
	SetStatus(failed, errors.New("boom"))
	failed.End()

	_, ok := tracer.Start(context.Background(), "ok")
	SetStatus(ok, nil)
	ok.End()

	for _, s := range flushed(t, tracer, exporter) {
		switch s.Name {
		case "failed":
			if s.Status.Code != codes.Error {
				t.Errorf("failed span status = %v", s.Status.Code)
			}
			if len(s.Events) != 1 {
				t.Errorf("expected one recorded error event, got %d", len(s.Events))
			}
		case "ok":
			if s.Status.Code != codes.Ok {
				t.Errorf("ok span status = %v", s.Status.Code)
			}
		}
	}
}

func TestAttributeHelpers(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, span := tracer.Start(context.Background(), "attrs")
	SetRequestAttributes(span, "req-1", "user-1", "")
	SetProviderAttributes(span, "gemini", "gemini-pro", 42)
	SetGuardrailAttributes(span, "input", "low", true)
	SetDurationAttribute(span, 17)
	SetErrorAttributes(span, errors.New("no provider"), "no_provider")
	AddEvent(span, "retrieved")
	span.End()

	spans := flushed(t, tracer, exporter)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	want := map[string]string{
		AttrRequestID:  "req-1",
		AttrUser:       "user-1",
		AttrProvider:   "gemini",
		AttrModel:      "gemini-pro",
		AttrTokensUsed: "42",
		AttrPhase:      "input",
		AttrRiskLevel:  "low",
		AttrPassed:     "true",
		AttrDuration:   "17",
		AttrErrorType:  "no_provider",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
	if _, ok := attrs[AttrSession]; ok {
		t.Error("empty session should not be recorded")
	}
	if spans[0].Status.Code != codes.Error {
		t.Error("SetErrorAttributes should mark the span as failed")
	}
}

var _ sdktrace.SpanExporter = (*tracetest.InMemoryExporter)(nil)
