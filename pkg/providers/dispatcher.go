package providers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// DefaultCallTimeout caps a single provider call.
const DefaultCallTimeout = 30 * time.Second

// Response is the result of one provider call.
type Response struct {
	Provider   string        `json:"provider"`
	Text       string        `json:"response"`
	TokensUsed int           `json:"tokensUsed"`
	Latency    time.Duration `json:"-"`
	Model      string        `json:"model"`
	Timestamp  time.Time     `json:"timestamp"`
}

// LatencyMs returns the elapsed call time in whole milliseconds.
func (r Response) LatencyMs() int64 {
	return r.Latency.Milliseconds()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDelayProvider replaces RandomDelay.
func WithDelayProvider(delay DelayProvider) Option {
	return func(d *Dispatcher) {
		d.delay = delay
	}
}

// WithSleeper replaces ContextSleep.
func WithSleeper(sleep Sleeper) Option {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

// WithCallTimeout caps each call. Zero disables the cap.
func WithCallTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// Dispatcher simulates calls to the known providers. It is safe for
// concurrent use.
type Dispatcher struct {
	providers map[string]simulatedProvider
	order     []string
	inFlight  map[string]*atomic.Int64

	delay   DelayProvider
	sleep   Sleeper
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher serving perplexity, gemini and chatgpt.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		providers: make(map[string]simulatedProvider),
		inFlight:  make(map[string]*atomic.Int64),
		delay:     RandomDelay,
		sleep:     ContextSleep,
		timeout:   DefaultCallTimeout,
		now:       time.Now,
		logger:    slog.Default().With("component", "providers.dispatcher"),
	}
	for _, p := range defaultProviders() {
		d.providers[p.id] = p
		d.order = append(d.order, p.id)
		d.inFlight[p.id] = &atomic.Int64{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call waits a provider-specific simulated latency, then returns a templated
// response that echoes the start of prompt. Temperature and maxTokens are
// accepted for interface parity and recorded in logs only.
func (d *Dispatcher) Call(ctx context.Context, provider, prompt string, temperature float64, maxTokens int) (Response, error) {
	p, ok := d.providers[provider]
	if !ok {
		return Response{}, &UnknownProviderError{Provider: provider, Known: d.Providers()}
	}

	start := d.now()
	if err := d.wait(ctx, p); err != nil {
		return Response{}, err
	}

	text := p.render(excerpt(prompt, promptExcerptLength))
	resp := Response{
		Provider:   p.id,
		Text:       text,
		TokensUsed: utf8.RuneCountInString(text) / 4,
		Model:      p.model,
		Timestamp:  d.now(),
	}
	resp.Latency = resp.Timestamp.Sub(start)

	d.logger.Debug("provider call completed",
		"provider", p.id,
		"model", p.model,
		"temperature", temperature,
		"max_tokens", maxTokens,
		"tokens_used", resp.TokensUsed,
		"latency_ms", resp.LatencyMs(),
	)

	return resp, nil
}

// Probe performs an empty call and returns its latency. It implements the
// routing health monitor's prober.
func (d *Dispatcher) Probe(ctx context.Context, provider string) (time.Duration, error) {
	p, ok := d.providers[provider]
	if !ok {
		return 0, &UnknownProviderError{Provider: provider, Known: d.Providers()}
	}

	start := d.now()
	if err := d.wait(ctx, p); err != nil {
		return 0, err
	}
	return d.now().Sub(start), nil
}

// InFlight returns the number of calls currently waiting on provider.
func (d *Dispatcher) InFlight(provider string) int {
	counter, ok := d.inFlight[provider]
	if !ok {
		return 0
	}
	return int(counter.Load())
}

// Providers returns the known provider ids in a fixed order.
func (d *Dispatcher) Providers() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Model returns the model identifier of provider.
func (d *Dispatcher) Model(provider string) (string, bool) {
	p, ok := d.providers[provider]
	return p.model, ok
}

func (d *Dispatcher) wait(ctx context.Context, p simulatedProvider) error {
	counter := d.inFlight[p.id]
	counter.Add(1)
	defer counter.Add(-1)

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.sleep(callCtx, d.delay.Delay(p.id, p.delay))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Warn("provider call timed out", "provider", p.id, "timeout", d.timeout)
		return &TimeoutError{Provider: p.id, Timeout: d.timeout}
	}
	return &ProviderError{Provider: p.id, Message: "call aborted", Cause: err}
}
