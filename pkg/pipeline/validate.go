package pipeline

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks the shape of req. knownProviders is the set an explicit
// provider hint must belong to; an empty set accepts any hint. All problems
// are collected into a single *ValidationError.
func Validate(req Request, knownProviders []string) error {
	var details []string

	if req.Prompt == "" {
		details = append(details, "prompt: must be a non-empty string")
	}
	if req.UserID == "" {
		details = append(details, "userId: required")
	}
	if req.Provider != "" && len(knownProviders) > 0 && !slices.Contains(knownProviders, req.Provider) {
		details = append(details, fmt.Sprintf("provider: must be one of %s", strings.Join(knownProviders, ", ")))
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > MaxTemperature) {
		details = append(details, fmt.Sprintf("temperature: must be between 0 and %g", MaxTemperature))
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		details = append(details, "maxTokens: must be a positive integer")
	}

	if len(details) > 0 {
		return &ValidationError{Details: details}
	}
	return nil
}
