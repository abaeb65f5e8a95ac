package config

import "time"

// Config is the root configuration structure for the Bastion gateway.
// It contains all configuration sections for the HTTP server, guardrail
// engine, provider routing, retrieval corpus, provider dispatch, audit
// storage and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, body limits and CORS.
	Server ServerConfig `yaml:"server"`

	// Guardrails contains the thresholds and extra rules of the input and
	// output policy checks.
	Guardrails GuardrailsConfig `yaml:"guardrails"`

	// Routing contains the initial provider status table and the health
	// monitor schedule.
	Routing RoutingConfig `yaml:"routing"`

	// Retrieval contains the document corpus sources and augmentation
	// parameters.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Providers contains provider dispatch settings.
	Providers ProvidersConfig `yaml:"providers"`

	// Audit contains audit log storage and query settings.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It should exceed providers.call_timeout.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request. Zero disables
	// the per-request deadline.
	// Default: 45s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. "*" allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// GuardrailsConfig contains guardrail thresholds.
type GuardrailsConfig struct {
	// MaxInputLength is the longest accepted prompt in characters.
	// Default: 10000
	MaxInputLength int `yaml:"max_input_length"`

	// MaxURLCount is the largest number of URLs a prompt may embed.
	// Default: 5
	MaxURLCount int `yaml:"max_url_count"`

	// InjectionConfidence is the confidence reported with injection matches.
	// Default: 0.85
	InjectionConfidence float64 `yaml:"injection_confidence"`

	// CustomInjectionRules are additional critical injection patterns
	// evaluated after the built-in ones.
	CustomInjectionRules []InjectionRuleConfig `yaml:"custom_injection_rules"`
}

// InjectionRuleConfig is one custom injection pattern.
type InjectionRuleConfig struct {
	// Category is reported as the injection type when the pattern matches.
	Category string `yaml:"category"`

	// Pattern is a Go regular expression.
	Pattern string `yaml:"pattern"`
}

// RoutingConfig contains provider routing configuration.
type RoutingConfig struct {
	// Providers is the initial status table. The order breaks score ties.
	// Default: perplexity, gemini, chatgpt with their reference load and latency.
	Providers []ProviderSeedConfig `yaml:"providers"`

	// Monitor controls the scheduled provider health probes.
	Monitor MonitorConfig `yaml:"monitor"`
}

// ProviderSeedConfig is the initial routing status of one provider.
type ProviderSeedConfig struct {
	// Name is the provider identifier.
	Name string `yaml:"name"`

	// Available marks whether the provider starts in rotation.
	Available bool `yaml:"available"`

	// Latency is the starting latency estimate in milliseconds.
	Latency float64 `yaml:"latency"`

	// LoadPercentage is the starting load, 0-100.
	LoadPercentage float64 `yaml:"load_percentage"`
}

// MonitorConfig contains provider health monitor configuration.
type MonitorConfig struct {
	// Enabled controls whether the monitor runs.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression or descriptor.
	// Default: "@every 30s"
	Schedule string `yaml:"schedule"`

	// ProbeTimeout bounds each probe.
	// Default: 5s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// Capacity is the in-flight call count treated as 100% load.
	// Default: 50
	Capacity int `yaml:"capacity"`
}

// RetrievalConfig contains document corpus configuration.
type RetrievalConfig struct {
	// LoadBuiltin seeds the store with the built-in reference documents.
	// Default: true
	LoadBuiltin bool `yaml:"load_builtin"`

	// SeedFile is an optional YAML corpus file loaded at startup.
	SeedFile string `yaml:"seed_file"`

	// WatchSeedFile reloads SeedFile when it changes.
	// Default: false
	WatchSeedFile bool `yaml:"watch_seed_file"`

	// DatabasePath is the SQLite file persisting runtime-added documents.
	// Empty disables persistence.
	// Default: "data/corpus.db"
	DatabasePath string `yaml:"database_path"`

	// BusyTimeout is the SQLite busy timeout for the corpus database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// EmbeddingDimension is the pseudo-embedding vector length.
	// Default: 384
	EmbeddingDimension int `yaml:"embedding_dimension"`

	// AugmentTopK is the number of documents prepended to a prompt.
	// Default: 3
	AugmentTopK int `yaml:"augment_top_k"`

	// AugmentMinSimilarity is the similarity floor for augmentation.
	// Default: 0.4
	AugmentMinSimilarity float64 `yaml:"augment_min_similarity"`

	// SearchMinSimilarity is the similarity floor for direct searches.
	// Default: 0.3
	SearchMinSimilarity float64 `yaml:"search_min_similarity"`
}

// ProvidersConfig contains provider dispatch configuration.
type ProvidersConfig struct {
	// CallTimeout caps the wait for a single provider call.
	// Default: 30s
	CallTimeout time.Duration `yaml:"call_timeout"`

	// SimulateLatency enables the randomized per-provider delay.
	// Default: true
	SimulateLatency bool `yaml:"simulate_latency"`
}

// AuditConfig contains audit log configuration.
type AuditConfig struct {
	// Backend selects the audit sink.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite sink settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// DefaultQueryLimit is the page size when a query names none.
	// Default: 100
	DefaultQueryLimit int `yaml:"default_query_limit"`

	// MaxQueryLimit is the largest accepted query limit.
	// Default: 10000
	MaxQueryLimit int `yaml:"max_query_limit"`
}

// SQLiteConfig contains SQLite-specific audit configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic PII redaction in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "bastion"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request and
	// stage duration in seconds.
	// Default: [0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "bastion-gateway"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// MinAvailableProviders is the number of routable providers required
	// for the gateway to report ready.
	// Default: 1
	MinAvailableProviders int `yaml:"min_available_providers"`
}
