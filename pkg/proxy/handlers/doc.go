// Package handlers implements the gateway's HTTP endpoints.
//
//	POST /api/gateway               GatewayHandler
//	GET  /api/audit/logs            AuditHandler.Logs
//	GET  /api/audit/stats           AuditHandler.Stats
//	GET  /api/providers/health      ProvidersHandler
//	GET  /api/documents/{id}        DocumentsHandler.Get
//	POST /api/documents             DocumentsHandler.Add
//	POST /api/documents/search      DocumentsHandler.Search
//
// Handlers depend on small interfaces over the pipeline, audit logger,
// retrieval store and routing engine so they can be tested in isolation.
// Every error body is produced by proxy.HandleError.
package handlers
