package routing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawProviders(t *rapid.T) []ProviderStatus {
	n := rapid.IntRange(1, 6).Draw(t, "n")
	seeds := make([]ProviderStatus, n)
	for i := range seeds {
		seeds[i] = ProviderStatus{
			Provider:       fmt.Sprintf("p%d", i),
			Available:      rapid.Bool().Draw(t, fmt.Sprintf("available%d", i)),
			Latency:        rapid.Float64Range(0, 1000).Draw(t, fmt.Sprintf("latency%d", i)),
			LoadPercentage: rapid.Float64Range(0, 100).Draw(t, fmt.Sprintf("load%d", i)),
		}
	}
	return seeds
}

func TestProperty_SelectProviderIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seeds := drawProviders(rt)
		hint := rapid.SampledFrom([]string{"", "p0", "p1", "p9"}).Draw(rt, "hint")
		engine := NewEngine(seeds)

		first, firstErr := engine.SelectProvider(Request{Provider: hint})
		for i := 0; i < 5; i++ {
			again, err := engine.SelectProvider(Request{Provider: hint})
			assert.Equal(rt, first, again)
			assert.Equal(rt, firstErr == nil, err == nil)
		}

		if firstErr != nil {
			return
		}

		// The winner has the minimum score among available providers unless
		// the hint was honored.
		if first == hint {
			return
		}
		var winner ProviderStatus
		for _, s := range engine.GetProviderHealth() {
			if s.Provider == first {
				winner = s
			}
		}
		require.True(rt, winner.Available)
		for _, s := range engine.GetProviderHealth() {
			if s.Available {
				assert.LessOrEqual(rt, winner.Score(), s.Score())
			}
		}
	})
}

func TestProperty_LoadIsAlwaysClamped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		engine := NewEngine(DefaultProviders())
		value := rapid.Float64().Draw(rt, "value")

		require.NoError(rt, engine.UpdateLoadPercentage("gemini", value))

		for _, s := range engine.GetProviderHealth() {
			assert.GreaterOrEqual(rt, s.LoadPercentage, 0.0)
			assert.LessOrEqual(rt, s.LoadPercentage, 100.0)
		}
	})
}
