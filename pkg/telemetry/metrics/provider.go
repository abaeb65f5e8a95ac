package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bastion-hq/gateway/pkg/config"
	"bastion-hq/gateway/pkg/routing"
)

// ProviderMetrics tracks routing decisions and provider calls.
//
// Metrics:
//   - bastion_provider_selections_total: routing decisions per provider
//   - bastion_provider_latency_seconds: provider call latency
//   - bastion_provider_errors_total: failed provider calls
type ProviderMetrics struct {
	selections *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	errors     *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_selections_total",
				Help:      "Total number of routing decisions per provider",
			},
			[]string{"provider"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_latency_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"provider"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of failed provider calls",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(pm.selections, pm.latency, pm.errors)

	return pm
}

// RecordSelection counts a routing decision.
func (pm *ProviderMetrics) RecordSelection(provider string) {
	pm.selections.WithLabelValues(provider).Inc()
}

// RecordCall records a provider call.
func (pm *ProviderMetrics) RecordCall(provider string, latency time.Duration, err error) {
	pm.latency.WithLabelValues(provider).Observe(latency.Seconds())
	if err != nil {
		pm.errors.WithLabelValues(provider).Inc()
	}
}

// ProviderStatusSource reports the current routing table.
type ProviderStatusSource interface {
	GetProviderHealth() []routing.ProviderStatus
}

// providerStatusCollector exports the routing table at scrape time.
type providerStatusCollector struct {
	source    ProviderStatusSource
	available *prometheus.Desc
	load      *prometheus.Desc
	latency   *prometheus.Desc
}

// RegisterProviderStatus exports bastion_provider_available,
// bastion_provider_load_percent and bastion_provider_status_latency_ms,
// read from source on every scrape.
func (c *Collector) RegisterProviderStatus(source ProviderStatusSource) error {
	ns := c.config.Namespace
	return c.registry.Register(&providerStatusCollector{
		source: source,
		available: prometheus.NewDesc(prometheus.BuildFQName(ns, "provider", "available"),
			"Whether the provider is in rotation (1) or not (0)", []string{"provider"}, nil),
		load: prometheus.NewDesc(prometheus.BuildFQName(ns, "provider", "load_percent"),
			"Current provider load percentage", []string{"provider"}, nil),
		latency: prometheus.NewDesc(prometheus.BuildFQName(ns, "provider", "status_latency_ms"),
			"Latest latency estimate in milliseconds", []string{"provider"}, nil),
	})
}

func (p *providerStatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.available
	ch <- p.load
	ch <- p.latency
}

func (p *providerStatusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range p.source.GetProviderHealth() {
		available := 0.0
		if s.Available {
			available = 1
		}
		ch <- prometheus.MustNewConstMetric(p.available, prometheus.GaugeValue, available, s.Provider)
		ch <- prometheus.MustNewConstMetric(p.load, prometheus.GaugeValue, s.LoadPercentage, s.Provider)
		ch <- prometheus.MustNewConstMetric(p.latency, prometheus.GaugeValue, s.Latency, s.Provider)
	}
}
