package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 45 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = false
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Guardrail defaults
	DefaultMaxInputLength      = 10000
	DefaultMaxURLCount         = 5
	DefaultInjectionConfidence = 0.85

	// Routing defaults
	DefaultMonitorEnabled      = true
	DefaultMonitorSchedule     = "@every 30s"
	DefaultMonitorProbeTimeout = 5 * time.Second
	DefaultMonitorCapacity     = 50

	// Retrieval defaults
	DefaultRetrievalLoadBuiltin  = true
	DefaultRetrievalDatabasePath = "data/corpus.db"
	DefaultRetrievalBusyTimeout  = 5 * time.Second
	DefaultEmbeddingDimension    = 384
	DefaultAugmentTopK           = 3
	DefaultAugmentMinSimilarity  = 0.4
	DefaultSearchMinSimilarity   = 0.3

	// Provider defaults
	DefaultProviderCallTimeout     = 30 * time.Second
	DefaultProviderSimulateLatency = true

	// Audit defaults
	DefaultAuditBackend            = "sqlite"
	DefaultAuditSQLitePath         = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns = 10
	DefaultAuditSQLiteMaxIdleConns = 5
	DefaultAuditSQLiteWALMode      = true
	DefaultAuditSQLiteBusyTimeout  = 5 * time.Second
	DefaultAuditQueryDefaultLimit  = 100
	DefaultAuditQueryMaxLimit      = 10000

	// Telemetry defaults
	DefaultLoggingLevel                = "info"
	DefaultLoggingFormat               = "json"
	DefaultLoggingRedactPII            = true
	DefaultMetricsEnabled              = true
	DefaultMetricsPath                 = "/metrics"
	DefaultMetricsNamespace            = "bastion"
	DefaultTracingEnabled              = false
	DefaultTracingSampler              = "ratio"
	DefaultTracingSampleRatio          = 1.0
	DefaultTracingEndpoint             = "localhost:4317"
	DefaultTracingServiceName          = "bastion-gateway"
	DefaultTracingInsecure             = true
	DefaultTracingTimeout              = 10 * time.Second
	DefaultHealthCheckTimeout          = 5 * time.Second
	DefaultHealthMinAvailableProviders = 1
)

// DefaultRequestDurationBuckets are the histogram buckets used for request
// and stage latency.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// DefaultProviderSeeds returns the reference provider status table.
func DefaultProviderSeeds() []ProviderSeedConfig {
	return []ProviderSeedConfig{
		{Name: "perplexity", Available: true, Latency: 150, LoadPercentage: 30},
		{Name: "gemini", Available: true, Latency: 200, LoadPercentage: 45},
		{Name: "chatgpt", Available: true, Latency: 180, LoadPercentage: 60},
	}
}

// Default returns a fully populated configuration. Loaders decode YAML on top
// of it so that booleans which default to true can still be switched off.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: DefaultCORSEnabled},
		},
		Routing: RoutingConfig{
			Monitor: MonitorConfig{Enabled: DefaultMonitorEnabled},
		},
		Retrieval: RetrievalConfig{
			LoadBuiltin:  DefaultRetrievalLoadBuiltin,
			DatabasePath: DefaultRetrievalDatabasePath,
		},
		Providers: ProvidersConfig{SimulateLatency: DefaultProviderSimulateLatency},
		Audit: AuditConfig{
			SQLite: SQLiteConfig{WALMode: DefaultAuditSQLiteWALMode},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultLoggingRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled:  DefaultTracingEnabled,
				Insecure: DefaultTracingInsecure,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Guardrail defaults
	if cfg.Guardrails.MaxInputLength == 0 {
		cfg.Guardrails.MaxInputLength = DefaultMaxInputLength
	}
	if cfg.Guardrails.MaxURLCount == 0 {
		cfg.Guardrails.MaxURLCount = DefaultMaxURLCount
	}
	if cfg.Guardrails.InjectionConfidence == 0 {
		cfg.Guardrails.InjectionConfidence = DefaultInjectionConfidence
	}

	// Routing defaults
	if len(cfg.Routing.Providers) == 0 {
		cfg.Routing.Providers = DefaultProviderSeeds()
	}
	if cfg.Routing.Monitor.Schedule == "" {
		cfg.Routing.Monitor.Schedule = DefaultMonitorSchedule
	}
	if cfg.Routing.Monitor.ProbeTimeout == 0 {
		cfg.Routing.Monitor.ProbeTimeout = DefaultMonitorProbeTimeout
	}
	if cfg.Routing.Monitor.Capacity == 0 {
		cfg.Routing.Monitor.Capacity = DefaultMonitorCapacity
	}

	// Retrieval defaults
	if cfg.Retrieval.BusyTimeout == 0 {
		cfg.Retrieval.BusyTimeout = DefaultRetrievalBusyTimeout
	}
	if cfg.Retrieval.EmbeddingDimension == 0 {
		cfg.Retrieval.EmbeddingDimension = DefaultEmbeddingDimension
	}
	if cfg.Retrieval.AugmentTopK == 0 {
		cfg.Retrieval.AugmentTopK = DefaultAugmentTopK
	}
	if cfg.Retrieval.AugmentMinSimilarity == 0 {
		cfg.Retrieval.AugmentMinSimilarity = DefaultAugmentMinSimilarity
	}
	if cfg.Retrieval.SearchMinSimilarity == 0 {
		cfg.Retrieval.SearchMinSimilarity = DefaultSearchMinSimilarity
	}

	// Provider defaults
	if cfg.Providers.CallTimeout == 0 {
		cfg.Providers.CallTimeout = DefaultProviderCallTimeout
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.DefaultQueryLimit == 0 {
		cfg.Audit.DefaultQueryLimit = DefaultAuditQueryDefaultLimit
	}
	if cfg.Audit.MaxQueryLimit == 0 {
		cfg.Audit.MaxQueryLimit = DefaultAuditQueryMaxLimit
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
	if cfg.Telemetry.Health.MinAvailableProviders == 0 {
		cfg.Telemetry.Health.MinAvailableProviders = DefaultHealthMinAvailableProviders
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
