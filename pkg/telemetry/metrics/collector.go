package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/config"
	"bastion-hq/gateway/pkg/guardrail"
	"bastion-hq/gateway/pkg/pipeline"
)

// Collector owns every gateway metric. It implements pipeline.Observer, so
// the orchestrator reports into it directly.
//
// Provider names are client-influenced through the routing hint, so provider
// labels pass through a CardinalityLimiter before use.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics   *RequestMetrics
	providerMetrics  *ProviderMetrics
	guardrailMetrics *GuardrailMetrics
	auditMetrics     *AuditMetrics

	cardinalityLimiter *CardinalityLimiter
}

var _ pipeline.Observer = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	orchestrator, err := pipeline.New(services, pipeline.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		config:             cfg,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(cfg, registry),
		providerMetrics:    NewProviderMetrics(cfg, registry),
		guardrailMetrics:   NewGuardrailMetrics(cfg, registry),
		auditMetrics:       NewAuditMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(100),
	}
}

// StageCompleted records the duration of one pipeline stage.
func (c *Collector) StageCompleted(stage pipeline.Stage, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordStage(string(stage), d)
}

// RequestCompleted records the outcome and total duration of a request.
func (c *Collector) RequestCompleted(outcome pipeline.Outcome, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(string(outcome), d)
}

// GuardrailBlocked counts a guardrail rejection.
func (c *Collector) GuardrailBlocked(phase pipeline.Phase, risk guardrail.RiskLevel) {
	if !c.config.Enabled {
		return
	}
	c.guardrailMetrics.RecordBlock(string(phase), string(risk))
}

// ProviderSelected counts a routing decision.
func (c *Collector) ProviderSelected(provider string) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordSelection(c.providerLabel(provider))
}

// ProviderCalled records the latency of a provider call and counts failures.
func (c *Collector) ProviderCalled(provider string, latency time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordCall(c.providerLabel(provider), latency, err)
}

// AuditWritten counts an audit write attempt.
func (c *Collector) AuditWritten(action audit.Action, err error) {
	if !c.config.Enabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.auditMetrics.RecordWrite(string(action), status)
}

func (c *Collector) providerLabel(provider string) string {
	if !c.cardinalityLimiter.Allow(provider) {
		return "other"
	}
	return provider
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
