package guardrail

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Config controls the thresholds used by the structural checks.
type Config struct {
	// MaxInputLength is the maximum prompt length in characters.
	MaxInputLength int

	// MaxURLCount is the maximum number of URLs a prompt may contain.
	MaxURLCount int

	// InjectionConfidence is reported with every injection match.
	InjectionConfidence float64

	// CustomInjectionRules are evaluated after the built-in injection rules.
	CustomInjectionRules []CustomRule
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxInputLength:      DefaultMaxInputLength,
		MaxURLCount:         DefaultMaxURLCount,
		InjectionConfidence: DefaultInjectionConfidence,
	}
}

// Engine applies the guardrail rules to input and output text.
type Engine struct {
	config Config

	pii       *Matcher
	injection *Matcher
	code      *Matcher
	sensitive *Matcher
}

// NewEngine creates an engine with the default rule lists plus any custom
// injection rules from cfg. Zero thresholds fall back to the defaults.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = DefaultMaxInputLength
	}
	if cfg.MaxURLCount <= 0 {
		cfg.MaxURLCount = DefaultMaxURLCount
	}
	if cfg.InjectionConfidence <= 0 || cfg.InjectionConfidence > 1 {
		cfg.InjectionConfidence = DefaultInjectionConfidence
	}

	injectionRules := DefaultInjectionRules()
	for i, custom := range cfg.CustomInjectionRules {
		rule, err := custom.Compile()
		if err != nil {
			return nil, fmt.Errorf("custom injection rule %d: %w", i, err)
		}
		injectionRules = append(injectionRules, rule)
	}

	return &Engine{
		config:    cfg,
		pii:       NewMatcher(DefaultPIIRules()),
		injection: NewMatcher(injectionRules),
		code:      NewMatcher(DefaultCodeRules()),
		sensitive: NewMatcher(DefaultSensitiveRules()),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// DetectAndSanitizePII scans text for every PII category. Each category is
// detected against the original text; replacements are applied in rule order.
func (e *Engine) DetectAndSanitizePII(text string) PIIDetection {
	detection := PIIDetection{
		PIITypes:  make([]PIIType, 0),
		Sanitized: text,
	}

	for _, rule := range e.pii.All(text) {
		detection.PIITypes = append(detection.PIITypes, PIIType(rule.Category))
		detection.Sanitized = rule.Pattern.ReplaceAllLiteralString(detection.Sanitized, rule.Replacement)
	}
	detection.HasPII = len(detection.PIITypes) > 0

	return detection
}

// DetectInjection returns the first matching injection category.
func (e *Engine) DetectInjection(text string) InjectionDetection {
	rule, ok := e.injection.First(text)
	if !ok {
		return InjectionDetection{
			IsInjection:   false,
			InjectionType: InjectionNone,
			Confidence:    0,
		}
	}

	return InjectionDetection{
		IsInjection:   true,
		InjectionType: InjectionType(rule.Category),
		Confidence:    e.config.InjectionConfidence,
	}
}

// ValidateInput runs every input rule against a prompt.
func (e *Engine) ValidateInput(text string) GuardrailCheck {
	violations := make([]string, 0)
	risk := RiskLow

	pii := e.DetectAndSanitizePII(text)
	if pii.HasPII {
		violations = append(violations, "PII detected: "+joinPIITypes(pii.PIITypes))
		risk = Escalate(risk, RiskMedium)
	}

	injection := e.DetectInjection(text)
	if injection.IsInjection {
		violations = append(violations, fmt.Sprintf("%s injection detected", injection.InjectionType))
		risk = Escalate(risk, RiskCritical)
	}

	if utf8.RuneCountInString(text) > e.config.MaxInputLength {
		violations = append(violations, "Input exceeds maximum length")
		risk = Escalate(risk, RiskMedium)
	}

	if CountURLs(text) > e.config.MaxURLCount {
		violations = append(violations, "Excessive URLs detected")
		risk = Escalate(risk, RiskHigh)
	}

	return GuardrailCheck{
		Passed:        len(violations) == 0,
		Violations:    violations,
		SanitizedText: pii.Sanitized,
		RiskLevel:     risk,
	}
}

// ValidateOutput runs every output rule against a provider response.
func (e *Engine) ValidateOutput(text string) GuardrailCheck {
	violations := make([]string, 0)
	risk := RiskLow

	pii := e.DetectAndSanitizePII(text)
	if pii.HasPII {
		violations = append(violations, "Output contains PII: "+joinPIITypes(pii.PIITypes))
		risk = Escalate(risk, RiskHigh)
	}

	if rule, ok := e.code.First(text); ok {
		violations = append(violations, "Output contains potentially executable code")
		risk = Escalate(risk, rule.Severity)
	}

	// Any number of keyword families produce a single violation.
	if rule, ok := e.sensitive.First(text); ok {
		violations = append(violations, "Output contains sensitive keywords")
		risk = Escalate(risk, rule.Severity)
	}

	return GuardrailCheck{
		Passed:        len(violations) == 0,
		Violations:    violations,
		SanitizedText: pii.Sanitized,
		RiskLevel:     risk,
	}
}

// CountURLs returns the number of http(s) URLs in text.
func CountURLs(text string) int {
	return len(urlPattern.FindAllStringIndex(text, -1))
}

func joinPIITypes(types []PIIType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
