package pipeline

import (
	"time"

	"bastion-hq/gateway/pkg/guardrail"
)

const (
	// DefaultTemperature is used when a request leaves temperature unset.
	DefaultTemperature = 0.7

	// MaxTemperature is the highest accepted sampling temperature.
	MaxTemperature = 2.0

	// DefaultMaxTokens is used when a request leaves maxTokens unset.
	DefaultMaxTokens = 1000
)

// Request is one gateway request as decoded from the wire. Temperature and
// MaxTokens are pointers so an omitted field can be told apart from zero.
type Request struct {
	Prompt      string   `json:"prompt"`
	Provider    string   `json:"provider,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	UserID      string   `json:"userId"`
	SessionID   string   `json:"sessionId,omitempty"`
}

// EffectiveTemperature returns the requested temperature or the default.
func (r Request) EffectiveTemperature() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// EffectiveMaxTokens returns the requested token cap or the default.
func (r Request) EffectiveMaxTokens() int {
	if r.MaxTokens == nil {
		return DefaultMaxTokens
	}
	return *r.MaxTokens
}

// ClientInfo describes the caller as seen by the transport. It is copied
// onto every audit entry the request produces.
type ClientInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// GuardrailSummary reports the risk levels of both guardrail checks.
type GuardrailSummary struct {
	InputRiskLevel  guardrail.RiskLevel `json:"inputRiskLevel"`
	OutputRiskLevel guardrail.RiskLevel `json:"outputRiskLevel"`
}

// Response is the successful result of a gateway request.
type Response struct {
	Response   string           `json:"response"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model"`
	TokensUsed int              `json:"tokensUsed"`
	LatencyMs  int64            `json:"latencyMs"`
	Guardrails GuardrailSummary `json:"guardrails"`
}

// State is a position in the request state machine.
type State int

const (
	StateReceived State = iota
	StateInputChecked
	StateAugmented
	StateRouted
	StateDispatched
	StateOutputChecked
	StateLogged
	StateResponded
	StateRejectedInput
	StateRejectedOutput
	StateFailed
)

var stateNames = [...]string{
	StateReceived:       "received",
	StateInputChecked:   "input_checked",
	StateAugmented:      "augmented",
	StateRouted:         "routed",
	StateDispatched:     "dispatched",
	StateOutputChecked:  "output_checked",
	StateLogged:         "logged",
	StateResponded:      "responded",
	StateRejectedInput:  "rejected_input",
	StateRejectedOutput: "rejected_output",
	StateFailed:         "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case StateResponded, StateRejectedInput, StateRejectedOutput, StateFailed:
		return true
	}
	return false
}

// Stage names a unit of timed work inside the pipeline.
type Stage string

const (
	StageInputCheck  Stage = "input_check"
	StageAugment     Stage = "augment"
	StageRoute       Stage = "route"
	StageDispatch    Stage = "dispatch"
	StageOutputCheck Stage = "output_check"
	StageAudit       Stage = "audit"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageInputCheck, StageAugment, StageRoute, StageDispatch, StageOutputCheck, StageAudit}

// Phase identifies which guardrail check rejected a request.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseOutput Phase = "output"
)

// Outcome classifies how a request ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeRejectedInput  Outcome = "rejected_input"
	OutcomeRejectedOutput Outcome = "rejected_output"
	OutcomeFailed         Outcome = "failed"
)

// StageTimings records how long each executed stage took.
type StageTimings map[Stage]time.Duration

// Milliseconds returns the timings keyed by stage name in whole milliseconds.
func (t StageTimings) Milliseconds() map[string]int64 {
	out := make(map[string]int64, len(t))
	for stage, d := range t {
		out[string(stage)] = d.Milliseconds()
	}
	return out
}
