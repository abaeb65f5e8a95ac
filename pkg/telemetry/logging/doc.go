// Package logging configures the process-wide slog logger.
//
// Setup builds a JSON or text handler from configuration, wraps it in a
// Handler that adds request fields carried by the context (request_id, user,
// session, provider, plus trace_id and span_id of the active span), and
// installs it with slog.SetDefault. Components then log through
// slog.Default().With("component", name).
//
// When redaction is enabled every string attribute passes through a
// Redactor. Built-in patterns cover API keys, bearer tokens, passwords,
// emails, SSNs, card numbers and phone numbers; configuration can add more.
// Values under sensitive keys such as "password" or "authorization" are
// masked outright.
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr)
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "request received", "email", "a@b.co")
//	// {"msg":"request received","request_id":"...","email":"[EMAIL_REDACTED]"}
package logging
