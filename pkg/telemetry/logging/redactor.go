package logging

import (
	"fmt"
	"regexp"
	"strings"

	"bastion-hq/gateway/pkg/config"
)

// Redactor removes personal data and credentials from log output.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternEmail       = "email"
	PatternSSN         = "ssn"
	PatternCreditCard  = "credit_card"
	PatternPhone       = "phone"
)

// Built-in patterns are applied in order. Credentials come first so that a
// token is not half-consumed by a numeric pattern.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternAPIKey, `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:=]\s*[a-zA-Z0-9]+)`, "sk-***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternPassword, `(?i)(password|passwd|pwd)\s*[:=]\s*[^\s]+`, "$1: ***"},
	{PatternEmail, `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, "[EMAIL_REDACTED]"},
	{PatternSSN, `\b\d{3}-\d{2}-\d{4}\b`, "[SSN_REDACTED]"},
	{PatternCreditCard, `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, "[CARD_REDACTED]"},
	{PatternPhone, `\b(\+\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}\b`, "[PHONE_REDACTED]"},
}

// sensitiveKeys are attribute keys whose values are masked outright.
var sensitiveKeys = map[string]bool{
	"password": true, "passwd": true, "pwd": true,
	"secret": true, "token": true, "api_key": true, "apikey": true,
	"authorization": true, "cookie": true,
	"ssn": true, "credit_card": true, "private_key": true,
}

// NewRedactor creates a Redactor with the built-in patterns followed by the
// custom ones. Custom patterns with an empty replacement use "[REDACTED]".
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = "[REDACTED]"
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: replacement,
		})
	}

	return r, nil
}

// RedactString redacts PII from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range r.patterns {
		value = pattern.regex.ReplaceAllString(value, pattern.replacement)
	}
	return value
}

// IsSensitiveKey reports whether an attribute key names a credential or
// identifier. Keys match exactly or by a suffix following "_", "-" or ".", so "user_password"
// is sensitive and "success" is not.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if sensitiveKeys[lower] {
		return true
	}
	for i, c := range lower {
		if (c == '_' || c == '-' || c == '.') && sensitiveKeys[lower[i+1:]] {
			return true
		}
	}
	return false
}

// MaskValue hides a sensitive value, keeping a four character prefix of
// longer values for correlation.
func MaskValue(v string) string {
	switch {
	case v == "":
		return ""
	case len(v) <= 8:
		return "***"
	default:
		return v[:4] + "***"
	}
}

// RedactIPv4 redacts an IPv4 address, keeping only the first octet.
func RedactIPv4(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}
	return parts[0] + ".*.*.*"
}
