// Package metrics provides Prometheus metrics for the gateway.
//
// # Overview
//
// Collector implements pipeline.Observer, so every stage timing, routing
// decision, guardrail block and audit write reported by the orchestrator
// lands in a Prometheus series. Gauges that mirror live state (the routing
// table and the document count) are read at scrape time.
//
// # Metrics
//
//   - bastion_requests_total{outcome}
//   - bastion_request_duration_seconds
//   - bastion_stage_duration_seconds{stage}
//   - bastion_guardrail_blocks_total{phase,risk_level}
//   - bastion_provider_selections_total{provider}
//   - bastion_provider_latency_seconds{provider}
//   - bastion_provider_errors_total{provider}
//   - bastion_provider_available{provider}
//   - bastion_provider_load_percent{provider}
//   - bastion_audit_writes_total{action,status}
//   - bastion_retrieval_documents
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	_ = collector.RegisterProviderStatus(routingEngine)
//	_ = collector.RegisterDocumentCount(store)
//	orchestrator, _ := pipeline.New(services, pipeline.WithObserver(collector))
//	mux.Handle("/metrics", collector.Handler())
package metrics
