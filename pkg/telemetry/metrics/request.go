package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bastion-hq/gateway/pkg/config"
)

// RequestMetrics tracks gateway request processing.
//
// Metrics:
//   - bastion_requests_total: requests by outcome
//   - bastion_request_duration_seconds: end-to-end request duration
//   - bastion_stage_duration_seconds: duration of each pipeline stage
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	stageDuration   *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of gateway requests by outcome",
			},
			[]string{"outcome"},
		),

		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end gateway request duration in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"stage"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration, rm.stageDuration)

	return rm
}

// RecordRequest records a finished request.
func (rm *RequestMetrics) RecordRequest(outcome string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(outcome).Inc()
	rm.requestDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of one stage.
func (rm *RequestMetrics) RecordStage(stage string, duration time.Duration) {
	rm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
