// Package health provides the gateway's liveness and readiness probes.
//
// Liveness (/health) only reports that the process is serving HTTP.
// Readiness (/ready) runs every registered CheckFunc concurrently, each
// bounded by the checker's timeout, and answers 503 when any of them fails.
//
// The gateway registers three checks:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck(health.CheckProviders, health.ProvidersCheck(engine, 1))
//	checker.RegisterCheck(health.CheckAudit, health.AuditCheck(sink))
//	checker.RegisterCheck(health.CheckDocuments, health.DocumentsCheck(store))
//	health.Register(mux, checker, version, commit, buildTime)
package health
