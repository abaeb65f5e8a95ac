package guardrail

import (
	"fmt"
	"regexp"
)

const (
	// DefaultMaxInputLength is the input size, in characters, above which a
	// prompt is flagged as oversize.
	DefaultMaxInputLength = 10000

	// DefaultMaxURLCount is the number of embedded URLs a prompt may carry
	// before it is flagged.
	DefaultMaxURLCount = 5

	// DefaultInjectionConfidence is the confidence reported for any
	// injection rule match.
	DefaultInjectionConfidence = 0.85
)

// Rule is one entry of an ordered rule list.
type Rule struct {
	// Category names what the rule detects. For PII rules it is a PIIType,
	// for injection rules an InjectionType.
	Category string

	// Pattern is the compiled expression that triggers the rule.
	Pattern *regexp.Regexp

	// Severity is the risk level the rule contributes when it fires.
	Severity RiskLevel

	// Replacement is substituted for every match during sanitization.
	// Empty for rules that only detect.
	Replacement string
}

// Matcher evaluates an ordered list of rules against text.
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a matcher over rules. The slice is copied.
func NewMatcher(rules []Rule) *Matcher {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Matcher{rules: copied}
}

// First returns the first rule whose pattern matches text.
func (m *Matcher) First(text string) (Rule, bool) {
	for _, rule := range m.rules {
		if rule.Pattern.MatchString(text) {
			return rule, true
		}
	}
	return Rule{}, false
}

// All returns every rule whose pattern matches text, in list order.
func (m *Matcher) All(text string) []Rule {
	var matched []Rule
	for _, rule := range m.rules {
		if rule.Pattern.MatchString(text) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// Rules returns a copy of the rule list.
func (m *Matcher) Rules() []Rule {
	rules := make([]Rule, len(m.rules))
	copy(rules, m.rules)
	return rules
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// CustomRule is a user supplied injection rule appended after the built-in
// rules.
type CustomRule struct {
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// Compile turns the custom rule into a Rule with critical severity.
func (c CustomRule) Compile() (Rule, error) {
	if !validInjectionTypes[InjectionType(c.Category)] {
		return Rule{}, fmt.Errorf("invalid injection category %q", c.Category)
	}
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern for %s rule: %w", c.Category, err)
	}
	return Rule{Category: c.Category, Pattern: re, Severity: RiskCritical}, nil
}

// DefaultPIIRules returns the PII rules in detection order. Severity is the
// input-side severity; output checks raise it.
func DefaultPIIRules() []Rule {
	return []Rule{
		{
			Category:    string(PIIEmail),
			Pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
			Severity:    RiskMedium,
			Replacement: "[EMAIL_REDACTED]",
		},
		{
			Category:    string(PIIPhone),
			Pattern:     regexp.MustCompile(`\b(\+\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}\b`),
			Severity:    RiskMedium,
			Replacement: "[PHONE_REDACTED]",
		},
		{
			Category:    string(PIISSN),
			Pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Severity:    RiskMedium,
			Replacement: "[SSN_REDACTED]",
		},
		{
			Category:    string(PIICreditCard),
			Pattern:     regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
			Severity:    RiskMedium,
			Replacement: "[CARD_REDACTED]",
		},
		{
			Category:    string(PIIAddress),
			Pattern:     regexp.MustCompile(`(?i)\b\d+\s+[\w\s]+(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd)\b`),
			Severity:    RiskMedium,
			Replacement: "[ADDRESS_REDACTED]",
		},
	}
}

// DefaultInjectionRules returns the injection rules in evaluation order.
// Prompt override phrases are checked before SQL keywords so that an
// override attempt that also names a table is reported as a prompt
// injection.
func DefaultInjectionRules() []Rule {
	return []Rule{
		{
			Category: string(InjectionPrompt),
			Pattern:  regexp.MustCompile(`(?i)(ignore\s+previous\s+instructions|disregard\s+all\s+prior|forget\s+everything|new\s+instructions:|system\s+prompt:|override\s+instructions)`),
			Severity: RiskCritical,
		},
		{
			Category: string(InjectionSQL),
			Pattern:  regexp.MustCompile(`(?i)(\bUNION\b|\bSELECT\b|\bDROP\b|\bINSERT\b|\bUPDATE\b|\bDELETE\b).*(\bFROM\b|\bWHERE\b|\bTABLE\b)`),
			Severity: RiskCritical,
		},
		{
			Category: string(InjectionXSS),
			Pattern:  regexp.MustCompile(`(?i)(<script|javascript:|onerror=|onload=|<iframe|eval\(|document\.cookie)`),
			Severity: RiskCritical,
		},
		{
			Category: string(InjectionCommand),
			Pattern:  regexp.MustCompile("(\\||;|&&|\\$\\(|`|>\\s*/|<\\s*/)"),
			Severity: RiskCritical,
		},
	}
}

// DefaultCodeRules returns the output rules that flag executable code.
func DefaultCodeRules() []Rule {
	return []Rule{
		{
			Category: "executable_code",
			Pattern:  regexp.MustCompile(`(?i)<script|eval\(|exec\(|system\(`),
			Severity: RiskCritical,
		},
	}
}

// DefaultSensitiveRules returns the output rules that flag sensitive keywords.
func DefaultSensitiveRules() []Rule {
	return []Rule{
		{
			Category: "credentials",
			Pattern:  regexp.MustCompile(`(?i)password|secret|api[_-]?key|token|credential`),
			Severity: RiskHigh,
		},
		{
			Category: "key_material",
			Pattern:  regexp.MustCompile(`(?i)private[_-]?key|ssh[_-]?key|access[_-]?token`),
			Severity: RiskHigh,
		},
	}
}

// urlPattern matches http and https URLs embedded in text.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s]+`)
