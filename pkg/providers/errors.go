package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownProvider is returned when dispatch is asked for an id outside
	// the known provider set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderTimeout is returned when a call exceeds the configured call
	// timeout.
	ErrProviderTimeout = errors.New("provider call timed out")
)

// UnknownProviderError names the rejected provider id.
type UnknownProviderError struct {
	// Provider is the requested id
	Provider string

	// Known lists the ids the dispatcher serves
	Known []string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s (known: %s)", e.Provider, strings.Join(e.Known, ", "))
}

// Is implements error matching for errors.Is().
func (e *UnknownProviderError) Is(target error) bool {
	return target == ErrUnknownProvider
}

// TimeoutError represents a call that exceeded the configured timeout.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// Is implements error matching for errors.Is().
func (e *TimeoutError) Is(target error) bool {
	return target == ErrProviderTimeout
}

// ProviderError represents a failed provider call.
type ProviderError struct {
	// Provider is the name of the provider that failed
	Provider string

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}
