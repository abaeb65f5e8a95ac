// Package types defines the JSON bodies exchanged over the gateway's HTTP
// interface.
//
// Request types:
//   - AddDocumentRequest: body of POST /api/documents
//   - SearchRequest: body of POST /api/documents/search
//
// Response types:
//   - SuccessResponse: the {success, data} envelope of POST /api/gateway
//   - ErrorResponse: every non-2xx body
//   - LogsResponse, ProvidersResponse, SearchResponse: admin read endpoints
package types
