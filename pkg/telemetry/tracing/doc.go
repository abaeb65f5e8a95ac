// Package tracing provides OpenTelemetry distributed tracing for the gateway.
//
// # Overview
//
// New installs an SDK tracer provider that exports spans over OTLP gRPC. The
// HTTP server wraps its handler with otelhttp, and the pipeline creates one
// child span per stage under it:
//
//	HTTP POST /api/gateway
//	└── pipeline.process
//	    ├── pipeline.input_check
//	    ├── pipeline.augment
//	    ├── pipeline.route
//	    ├── pipeline.dispatch
//	    ├── pipeline.output_check
//	    └── pipeline.audit
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// When tracing is disabled the global provider stays a noop and spans cost
// almost nothing.
package tracing
