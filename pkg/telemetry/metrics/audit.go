package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"bastion-hq/gateway/pkg/config"
)

// AuditMetrics tracks audit log writes.
//
// Metrics:
//   - bastion_audit_writes_total: write attempts by action and status
type AuditMetrics struct {
	writes *prometheus.CounterVec
}

// NewAuditMetrics creates and registers audit metrics with the provided registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "audit_writes_total",
				Help:      "Total number of audit log writes",
			},
			[]string{"action", "status"},
		),
	}

	registry.MustRegister(am.writes)

	return am
}

// RecordWrite counts a write attempt. status is "success" or "error".
func (am *AuditMetrics) RecordWrite(action, status string) {
	am.writes.WithLabelValues(action, status).Inc()
}
