package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"bastion-hq/gateway/pkg/config"
)

// GuardrailMetrics tracks guardrail rejections.
//
// Metrics:
//   - bastion_guardrail_blocks_total: rejections by phase and risk level
type GuardrailMetrics struct {
	blocks *prometheus.CounterVec
}

// NewGuardrailMetrics creates and registers guardrail metrics with the provided registry.
func NewGuardrailMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GuardrailMetrics {
	gm := &GuardrailMetrics{
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "guardrail_blocks_total",
				Help:      "Total number of requests blocked by guardrails",
			},
			[]string{"phase", "risk_level"},
		),
	}

	registry.MustRegister(gm.blocks)

	return gm
}

// RecordBlock counts a rejection.
func (gm *GuardrailMetrics) RecordBlock(phase, riskLevel string) {
	gm.blocks.WithLabelValues(phase, riskLevel).Inc()
}
