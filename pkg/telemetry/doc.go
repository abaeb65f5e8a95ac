// Package telemetry groups the gateway's observability packages.
//
// # Components
//
//   - logging: slog setup with PII redaction and request-scoped attributes
//   - metrics: Prometheus collectors for requests, guardrails, providers and audit
//   - tracing: OpenTelemetry spans for each pipeline stage
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(ctx)
//
// # PII Protection
//
// Log attributes pass through the same redactor regardless of handler format:
//
//   - Emails: user@example.com → [EMAIL_REDACTED]
//   - SSN: 123-45-6789 → [SSN_REDACTED]
//   - IP addresses: 192.168.1.1 → 192.*.*.*
//
// Custom redaction patterns can be configured.
package telemetry
