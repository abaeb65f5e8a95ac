/*
Package cli provides command-line helpers shared by the bastion command.

Output Formatting:

Results are printed as aligned text, JSON, or CSV. Types implementing
Tabular render as tables in text and CSV output:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)

Errors and Exit Codes:

Commands return ConfigError for unusable configuration, CommandError for
runtime failures, and BlockedError when an offline guardrail check rejects
its input. ExitCode maps each to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
