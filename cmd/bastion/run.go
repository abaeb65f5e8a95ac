package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bastion-hq/gateway/pkg/cli"
	"bastion-hq/gateway/pkg/server"
	"bastion-hq/gateway/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Bastion gateway server",
	Long: `Start the Bastion gateway server with the specified configuration.

The server listens on the configured address and serves POST /api/gateway
along with the audit, provider, document, health and metrics endpoints.

Examples:
  # Start with default config
  bastion run

  # Start with custom config
  bastion run --config /etc/bastion/config.yaml

  # Override listen address
  bastion run --listen 0.0.0.0:8080

  # Validate config and build every component without serving
  bastion run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "build every component without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return cli.WrapConfigError(err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	gw, err := newGateway(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := gw.close(shutdownCtx); err != nil {
			slog.Error("failed to release gateway resources", "error", err)
		}
	}()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		fmt.Fprintf(out, "✓ %d documents, %d providers, audit backend %s\n",
			gw.documents.Len(), len(gw.router.Providers()), cfg.Audit.Backend)
		return nil
	}

	if err := gw.start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	printBanner(cmd, gw)

	srv := server.NewServer(cfg, gw.dependencies())
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, gw *gateway) {
	out := cmd.OutOrStdout()
	cfg := gw.cfg

	fmt.Fprintf(out, "Bastion v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	} else {
		fmt.Fprintln(out, "✓ Using default configuration")
	}
	fmt.Fprintf(out, "✓ Providers: %d routable of %d\n", gw.router.AvailableCount(), len(gw.router.Providers()))
	fmt.Fprintf(out, "✓ Documents: %d\n", gw.documents.Len())
	fmt.Fprintf(out, "✓ Audit backend: %s\n", cfg.Audit.Backend)
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
