package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bastion-hq/gateway/pkg/cli"
)

var validateFlags struct {
	print bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file, apply BASTION_* environment overrides and
defaults, and report every invalid field.

The guardrail custom rules are compiled as part of validation, so a bad
injection pattern is reported here rather than at startup.

Examples:
  # Validate a configuration file
  bastion validate --config config.yaml

  # Print the effective configuration after defaults and overrides
  bastion validate --config config.yaml --print`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.print, "print", false, "print the effective configuration as YAML")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := newGuardrailEngine(&cfg.Guardrails); err != nil {
		return cli.NewConfigError("guardrails.custom_injection_rules", err.Error())
	}

	out := cmd.OutOrStdout()
	if validateFlags.print {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return cli.NewCommandError("validate", err)
		}
		return enc.Close()
	}

	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintf(out, "  listen address:  %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "  providers:       %d\n", len(cfg.Routing.Providers))
	fmt.Fprintf(out, "  audit backend:   %s\n", cfg.Audit.Backend)
	fmt.Fprintf(out, "  custom rules:    %d\n", len(cfg.Guardrails.CustomInjectionRules))
	return nil
}
