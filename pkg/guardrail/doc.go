// Package guardrail implements the input and output policy checks applied to
// every prompt and every provider response passing through the gateway.
//
// The engine is rule based. Each check is an ordered list of Rule values
// (pattern, category, severity) evaluated through a single Matcher:
//
//   - PII detection and sanitization (email, phone, ssn, credit_card, address)
//   - Injection detection (prompt, sql, xss, command), first match wins
//   - Structural input checks (maximum length, embedded URL count)
//   - Output checks (PII, executable code markers, sensitive keywords)
//
// # Risk Levels
//
// Every GuardrailCheck carries a RiskLevel ordered low < medium < high <
// critical. A check's level is the maximum severity among the rules that
// fired; it is raised with Escalate and never lowered within the same check.
//
// # Usage
//
//	engine, err := guardrail.NewEngine(guardrail.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	check := engine.ValidateInput(prompt)
//	if !check.Passed {
//		slog.Warn("input rejected",
//			"violations", check.Violations,
//			"risk_level", check.RiskLevel)
//	}
//
// # Thread Safety
//
// An Engine is immutable after construction and safe for concurrent use.
package guardrail
