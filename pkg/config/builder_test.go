package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with in-memory audit storage.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Default()
	cfg.Audit.Backend = "memory"
	cfg.Retrieval.DatabasePath = ""
	return &ConfigBuilder{cfg: *cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithReadTimeout sets the server read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ReadTimeout = d
	return b
}

// WithProvider appends a provider seed.
func (b *ConfigBuilder) WithProvider(seed ProviderSeedConfig) *ConfigBuilder {
	b.cfg.Routing.Providers = append(b.cfg.Routing.Providers, seed)
	return b
}

// WithAuditBackend sets the audit backend.
func (b *ConfigBuilder) WithAuditBackend(backend string) *ConfigBuilder {
	b.cfg.Audit.Backend = backend
	return b
}

// WithSQLitePath sets the audit database path.
func (b *ConfigBuilder) WithSQLitePath(path string) *ConfigBuilder {
	b.cfg.Audit.SQLite.Path = path
	return b
}

// WithInjectionRule adds a custom injection rule.
func (b *ConfigBuilder) WithInjectionRule(category, pattern string) *ConfigBuilder {
	b.cfg.Guardrails.CustomInjectionRules = append(b.cfg.Guardrails.CustomInjectionRules,
		InjectionRuleConfig{Category: category, Pattern: pattern})
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithTracingEnabled enables tracing with the given endpoint.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}
