// Package pipeline runs gateway requests through the policy-enforcing
// request pipeline.
//
// Every request moves through a fixed sequence of states:
//
//	Received → InputChecked → Augmented → Routed → Dispatched → OutputChecked → Logged → Responded
//
// with two guardrail short-circuits (RejectedInput, RejectedOutput) and a
// catch-all Failed state reachable from anywhere. Stages run strictly in
// order within one request; independent requests run concurrently.
//
// # Audit Guarantees
//
// A rejected request always produces one guardrail_block entry and never
// reaches a later stage. A failed request produces a best-effort error entry.
// A successful request produces one response entry, and if that entry cannot
// be written the request fails instead of returning an unaudited response.
// Audit writes are detached from caller cancellation.
//
// # Usage
//
//	orch, err := pipeline.New(pipeline.Services{
//		Guardrails: engine,
//		Augmenter:  store,
//		Router:     router,
//		Dispatcher: dispatcher,
//		Audit:      auditLogger,
//	}, pipeline.WithObserver(collector))
//	if err != nil {
//		return err
//	}
//
//	resp, err := orch.Process(ctx, req, pipeline.ClientInfo{RequestID: id})
package pipeline
