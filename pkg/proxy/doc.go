// Package proxy holds the HTTP plumbing shared by the gateway handlers:
// body decoding with schema checks, client identification and the mapping
// from pipeline errors to HTTP replies.
//
// Error mapping:
//
//	*pipeline.ValidationError          400 {error, details}
//	*pipeline.RejectionError           400 {error, violations, riskLevel}
//	*audit.QueryError                  400 {error, details}
//	retrieval.ErrInsufficientClearance 403 {error}
//	retrieval.ErrDocumentNotFound      404 {error}
//	anything else                      500 {error: "Internal server error"}
//
// The client address recorded on audit entries is the first
// X-Forwarded-For hop, else X-Real-IP, else the connection's remote host.
package proxy
