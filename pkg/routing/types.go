package routing

import "time"

const (
	// LoadWeight is the score weight applied to a provider's load percentage.
	LoadWeight = 0.5

	// LatencyWeight is the score weight applied to a provider's latency in ms.
	LatencyWeight = 0.3
)

// ProviderStatus is the routing view of one provider.
type ProviderStatus struct {
	// Provider is the provider identifier.
	Provider string `json:"provider" yaml:"provider"`

	// Available indicates whether the provider may receive traffic.
	Available bool `json:"available" yaml:"available"`

	// Latency is the most recent observed latency in milliseconds.
	Latency float64 `json:"latency" yaml:"latency"`

	// LoadPercentage is the current load, always within [0,100].
	LoadPercentage float64 `json:"loadPercentage" yaml:"load_percentage"`

	// LastChecked is when availability or latency was last updated.
	LastChecked time.Time `json:"lastChecked" yaml:"-"`
}

// Score returns the selection score; lower is better.
func (s ProviderStatus) Score() float64 {
	return s.LoadPercentage*LoadWeight + s.Latency*LatencyWeight
}

// Request carries the routing inputs of a gateway request.
type Request struct {
	// Provider is an optional explicit provider hint.
	Provider string
}

// StatsSnapshot is a point-in-time copy of routing statistics.
type StatsSnapshot struct {
	// TotalSelections is the number of SelectProvider calls.
	TotalSelections int64 `json:"totalSelections"`

	// SelectionsPerProvider counts successful selections per provider.
	SelectionsPerProvider map[string]int64 `json:"selectionsPerProvider"`

	// HintsHonored counts selections that returned the requested provider.
	HintsHonored int64 `json:"hintsHonored"`

	// HintsIgnored counts requests whose hinted provider was unavailable or unknown.
	HintsIgnored int64 `json:"hintsIgnored"`

	// Errors counts selections that failed.
	Errors int64 `json:"errors"`

	// LastResetTime is when the counters were last reset.
	LastResetTime time.Time `json:"lastResetTime"`
}
