package config

import (
	"reflect"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
				}
				if cfg.Server.WriteTimeout != DefaultWriteTimeout {
					t.Errorf("expected write timeout %v, got %v", DefaultWriteTimeout, cfg.Server.WriteTimeout)
				}
				if cfg.Server.MaxBodyBytes != DefaultMaxBodyBytes {
					t.Errorf("expected max body bytes %d, got %d", DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
				}
				if cfg.Guardrails.MaxInputLength != DefaultMaxInputLength {
					t.Errorf("expected max input length %d, got %d", DefaultMaxInputLength, cfg.Guardrails.MaxInputLength)
				}
				if cfg.Guardrails.InjectionConfidence != DefaultInjectionConfidence {
					t.Errorf("expected injection confidence %v, got %v", DefaultInjectionConfidence, cfg.Guardrails.InjectionConfidence)
				}
				if len(cfg.Routing.Providers) != 3 {
					t.Errorf("expected 3 provider seeds, got %d", len(cfg.Routing.Providers))
				}
				if cfg.Routing.Monitor.Schedule != DefaultMonitorSchedule {
					t.Errorf("expected schedule %q, got %q", DefaultMonitorSchedule, cfg.Routing.Monitor.Schedule)
				}
				if cfg.Retrieval.AugmentTopK != DefaultAugmentTopK {
					t.Errorf("expected augment top k %d, got %d", DefaultAugmentTopK, cfg.Retrieval.AugmentTopK)
				}
				if cfg.Audit.Backend != DefaultAuditBackend {
					t.Errorf("expected audit backend %q, got %q", DefaultAuditBackend, cfg.Audit.Backend)
				}
				if cfg.Audit.SQLite.Path != DefaultAuditSQLitePath {
					t.Errorf("expected audit path %q, got %q", DefaultAuditSQLitePath, cfg.Audit.SQLite.Path)
				}
				if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
					t.Errorf("expected namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
				}
				if cfg.Telemetry.Tracing.Sampler != DefaultTracingSampler {
					t.Errorf("expected sampler %q, got %q", DefaultTracingSampler, cfg.Telemetry.Tracing.Sampler)
				}
				if !reflect.DeepEqual(cfg.Server.CORS.AllowedMethods, []string{"GET", "POST", "OPTIONS"}) {
					t.Errorf("unexpected CORS methods %v", cfg.Server.CORS.AllowedMethods)
				}
			},
		},
		{
			name: "explicit values are preserved",
			input: Config{
				Server:     ServerConfig{ListenAddress: "0.0.0.0:9000"},
				Guardrails: GuardrailsConfig{MaxInputLength: 500},
				Routing: RoutingConfig{
					Providers: []ProviderSeedConfig{{Name: "solo", Available: true}},
				},
				Audit: AuditConfig{Backend: "memory"},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.ListenAddress != "0.0.0.0:9000" {
					t.Errorf("listen address overwritten: %q", cfg.Server.ListenAddress)
				}
				if cfg.Guardrails.MaxInputLength != 500 {
					t.Errorf("max input length overwritten: %d", cfg.Guardrails.MaxInputLength)
				}
				if len(cfg.Routing.Providers) != 1 || cfg.Routing.Providers[0].Name != "solo" {
					t.Errorf("providers overwritten: %+v", cfg.Routing.Providers)
				}
				if cfg.Audit.Backend != "memory" {
					t.Errorf("audit backend overwritten: %q", cfg.Audit.Backend)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	first := Config{}
	ApplyDefaults(&first)
	second := first
	ApplyDefaults(&second)

	if !reflect.DeepEqual(first, second) {
		t.Error("applying defaults twice changed the configuration")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
	if !cfg.Routing.Monitor.Enabled {
		t.Error("expected monitor enabled by default")
	}
	if !cfg.Retrieval.LoadBuiltin {
		t.Error("expected builtin documents by default")
	}
	if !cfg.Providers.SimulateLatency {
		t.Error("expected simulated latency by default")
	}
	if !cfg.Audit.SQLite.WALMode {
		t.Error("expected WAL mode by default")
	}
	if !cfg.Telemetry.Logging.RedactPII {
		t.Error("expected PII redaction by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}
}

func TestDefaultProviderSeeds_Fresh(t *testing.T) {
	a := DefaultProviderSeeds()
	a[0].Name = "mutated"
	if DefaultProviderSeeds()[0].Name != "perplexity" {
		t.Error("DefaultProviderSeeds returned shared state")
	}
}
