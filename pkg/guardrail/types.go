package guardrail

import "fmt"

// RiskLevel is the ordinal severity assigned to a guardrail check.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns the position of the level in the order low < medium < high <
// critical. Unknown levels rank below low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// Valid reports whether r is one of the four known levels.
func (r RiskLevel) Valid() bool {
	return r.Rank() >= 0
}

// Escalate returns the more severe of current and next.
func Escalate(current, next RiskLevel) RiskLevel {
	if next.Rank() > current.Rank() {
		return next
	}
	return current
}

// ParseRiskLevel parses a risk level string.
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.Valid() {
		return "", fmt.Errorf("invalid risk level: %q", s)
	}
	return level, nil
}

// PIIType identifies a category of personally identifiable information.
type PIIType string

const (
	PIIEmail      PIIType = "email"
	PIIPhone      PIIType = "phone"
	PIISSN        PIIType = "ssn"
	PIICreditCard PIIType = "credit_card"
	PIIAddress    PIIType = "address"
	PIIName       PIIType = "name"
)

// InjectionType identifies the category of an injection attempt.
type InjectionType string

const (
	InjectionSQL     InjectionType = "sql"
	InjectionPrompt  InjectionType = "prompt"
	InjectionXSS     InjectionType = "xss"
	InjectionCommand InjectionType = "command"
	InjectionNone    InjectionType = "none"
)

// validInjectionTypes contains the categories an injection rule may report.
var validInjectionTypes = map[InjectionType]bool{
	InjectionSQL:     true,
	InjectionPrompt:  true,
	InjectionXSS:     true,
	InjectionCommand: true,
}

// GuardrailCheck is the result of validating one piece of text.
// It is produced fresh per call and never mutated afterwards.
type GuardrailCheck struct {
	// Passed is true when no rule fired.
	Passed bool `json:"passed"`

	// Violations lists a description of every rule that fired, in evaluation order.
	Violations []string `json:"violations"`

	// SanitizedText is the input with PII replaced by redaction markers.
	SanitizedText string `json:"sanitizedText,omitempty"`

	// RiskLevel is the maximum severity among the rules that fired.
	RiskLevel RiskLevel `json:"riskLevel"`
}

// PIIDetection is the result of scanning text for PII.
type PIIDetection struct {
	// HasPII indicates whether any PII category matched.
	HasPII bool `json:"hasPII"`

	// PIITypes lists the matched categories in detection order.
	PIITypes []PIIType `json:"piiTypes"`

	// Sanitized is the text with every match replaced by its category marker.
	Sanitized string `json:"sanitized"`
}

// InjectionDetection is the result of scanning text for injection attempts.
type InjectionDetection struct {
	IsInjection   bool          `json:"isInjection"`
	InjectionType InjectionType `json:"injectionType"`
	Confidence    float64       `json:"confidence"`
}
