package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the bastion command.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitBlocked = 3
)

// ConfigError reports a configuration file or flag that could not be used.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CommandError wraps the failure of a subcommand.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// BlockedError signals that an offline guardrail check rejected its input.
// It carries no cause; the command has already printed the verdict.
type BlockedError struct {
	RiskLevel string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by guardrails (risk level %s)", e.RiskLevel)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// WrapConfigError creates a ConfigError around a load or validation failure.
func WrapConfigError(err error) *ConfigError {
	return &ConfigError{
		Message: err.Error(),
		Err:     err,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return ExitBlocked
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}
	return ExitFailure
}
