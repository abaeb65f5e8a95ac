package providers

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayRange is a uniform latency distribution [Min, Min+Spread).
type DelayRange struct {
	Min    time.Duration
	Spread time.Duration
}

// DelayProvider picks how long a simulated call waits.
type DelayProvider interface {
	Delay(provider string, r DelayRange) time.Duration
}

// DelayFunc adapts a function to DelayProvider.
type DelayFunc func(provider string, r DelayRange) time.Duration

// Delay implements DelayProvider.
func (f DelayFunc) Delay(provider string, r DelayRange) time.Duration {
	return f(provider, r)
}

// RandomDelay draws uniformly from each provider's range.
var RandomDelay DelayProvider = DelayFunc(func(_ string, r DelayRange) time.Duration {
	if r.Spread <= 0 {
		return r.Min
	}
	return r.Min + time.Duration(rand.Float64()*float64(r.Spread))
})

// NoDelay makes every simulated call return immediately.
var NoDelay DelayProvider = DelayFunc(func(string, DelayRange) time.Duration {
	return 0
})

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
