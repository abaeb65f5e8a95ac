package pipeline

import (
	"time"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/guardrail"
)

// Observer is notified as requests move through the pipeline. Implementations
// must be safe for concurrent use and must not block.
type Observer interface {
	StageCompleted(stage Stage, d time.Duration)
	RequestCompleted(outcome Outcome, d time.Duration)
	GuardrailBlocked(phase Phase, risk guardrail.RiskLevel)
	ProviderSelected(provider string)
	ProviderCalled(provider string, latency time.Duration, err error)
	AuditWritten(action audit.Action, err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) StageCompleted(Stage, time.Duration)         {}
func (NopObserver) RequestCompleted(Outcome, time.Duration)     {}
func (NopObserver) GuardrailBlocked(Phase, guardrail.RiskLevel) {}
func (NopObserver) ProviderSelected(string)                     {}
func (NopObserver) ProviderCalled(string, time.Duration, error) {}
func (NopObserver) AuditWritten(audit.Action, error)            {}
