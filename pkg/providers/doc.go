// Package providers dispatches prompts to the simulated LLM providers.
//
// # Overview
//
// The gateway knows three providers: perplexity, gemini and chatgpt. Each is
// served by a simulated backend that produces a canned, provider-tagged answer
// after an artificial delay. A Dispatcher owns the providers, enforces the
// per-call timeout and tracks in-flight calls so the routing layer can read
// current load.
//
// # Basic Usage
//
//	d := providers.NewDispatcher(
//	    providers.WithCallTimeout(10 * time.Second),
//	)
//
//	resp, err := d.Call(ctx, "gemini", "Summarize our onboarding policy", 0.7, 512)
//	if err != nil {
//	    var unknown *providers.UnknownProviderError
//	    if errors.As(err, &unknown) {
//	        // caller asked for a provider the dispatcher does not serve
//	    }
//	    return err
//	}
//	fmt.Println(resp.Provider, resp.Model, resp.TokensUsed)
//
// # Delays
//
// Latency is drawn from a DelayProvider and slept with a Sleeper. Both are
// injectable so tests can run without wall-clock waits:
//
//	d := providers.NewDispatcher(
//	    providers.WithDelayProvider(providers.NoDelay),
//	)
//
// # Errors
//
// Calls fail with *UnknownProviderError for ids outside the known set and with
// *TimeoutError when the call timeout fires first. Both match their sentinel
// (ErrUnknownProvider, ErrProviderTimeout) through errors.Is. Cancellation of
// the caller's context is returned unchanged.
package providers
