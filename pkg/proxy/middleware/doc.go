// Package middleware provides the HTTP middleware chain of the gateway.
//
// The server applies, outermost first:
//
//	RecoveryMiddleware   panics become the generic 500 body
//	RequestIDMiddleware  X-Request-ID in, context and response header out
//	LoggingMiddleware    one structured record per request
//	CORSMiddleware       optional, driven by server.cors
//	BodyLimitMiddleware  server.max_body_bytes
//	TimeoutMiddleware    server.request_timeout as a context deadline
//
// Request IDs are stored with logging.WithRequestID so every slog record
// emitted while serving the request carries request_id.
package middleware
