package routing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProviderAvailable is returned when no provider is available.
	ErrNoProviderAvailable = errors.New("no LLM providers available")

	// ErrProviderNotFound is returned when an update names an unknown provider.
	ErrProviderNotFound = errors.New("provider not found")
)

// NoProviderAvailableError is returned by SelectProvider when the available
// set is empty.
type NoProviderAvailableError struct {
	// Checked contains the providers that were considered.
	Checked []string
}

// Error implements the error interface.
func (e *NoProviderAvailableError) Error() string {
	if len(e.Checked) == 0 {
		return ErrNoProviderAvailable.Error()
	}
	return fmt.Sprintf("%s (checked: %s)", ErrNoProviderAvailable, strings.Join(e.Checked, ", "))
}

// Is implements error matching for errors.Is().
func (e *NoProviderAvailableError) Is(target error) bool {
	return target == ErrNoProviderAvailable
}

// ProviderNotFoundError is returned when a status update targets a provider
// the engine does not know.
type ProviderNotFoundError struct {
	Provider  string
	Available []string
}

// Error implements the error interface.
func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found (known providers: %s)",
		e.Provider, strings.Join(e.Available, ", "))
}

// Is implements error matching for errors.Is().
func (e *ProviderNotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}
