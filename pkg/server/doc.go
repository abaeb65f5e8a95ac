// Package server wires the gateway's HTTP routes, middleware chain and
// lifecycle.
//
// Routes:
//
//	POST /api/gateway
//	GET  /api/audit/logs, /api/audit/stats
//	GET  /api/providers/health
//	GET  /api/documents/{id}
//	POST /api/documents, /api/documents/search
//	GET  /health, /ready, /version
//	GET  <telemetry.metrics.path>     when metrics are enabled
//
// Every request is wrapped in an otelhttp server span, gets an
// X-Trace-ID response header when tracing is active, and then passes the
// middleware chain described in package middleware.
//
// Start blocks until its context is cancelled, SIGINT or SIGTERM arrives,
// or Stop is called, then drains in-flight requests for at most
// server.shutdown_timeout.
package server
