package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bastion-hq/gateway/pkg/cli"
	"bastion-hq/gateway/pkg/config"
)

var (
	// Global flags
	cfgFile  string
	envFiles []string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "bastion",
	Short: "Bastion - policy-enforcing LLM gateway",
	Long: `Bastion is a gateway that sits between client applications and LLM
providers and enforces policy on every request.

Each prompt passes through:
  - Input guardrails (PII sanitization, injection detection, length and URL limits)
  - Retrieval augmentation from a classified document corpus
  - Load and latency aware provider routing
  - Output guardrails (PII, code and sensitive content)
  - An append-only audit log with per-entry digests`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(envFiles...); err != nil {
			return cli.WrapConfigError(err)
		}
		return nil
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv file(s) loaded before reading configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configuration named by --config with BASTION_*
// environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError(err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}
