package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/audit/export"
	"bastion-hq/gateway/pkg/cli"
)

var auditFlags struct {
	user      string
	action    string
	timeRange string
	limit     int
	output    string
	pretty    bool

	// Each command has its own default format.
	queryFormat  string
	statsFormat  string
	exportFormat string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit log",
	Long: `Query, summarize, export and verify the gateway audit log.

The audit backend is taken from the configuration file. Only the sqlite
backend persists across runs.

Subcommands:
  query   - List entries matching filters
  stats   - Summarize entries by action
  export  - Write entries as JSON or CSV
  verify  - Recompute entry digests and report tampering

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z"`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List audit entries",
	Long: `List audit entries newest first.

Examples:
  # Last 20 guardrail blocks
  bastion audit query --action guardrail_block --limit 20

  # Entries of one user in a time range, as JSON
  bastion audit query --user user-123 --time-range "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z" --format json`,
	RunE: queryAudit,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize audit entries",
	Long: `Print the total entry count, the count per action, and the most recent
guardrail blocks.

Examples:
  bastion audit stats
  bastion audit stats --user user-123 --format json`,
	RunE: auditStats,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit entries",
	Long: `Export audit entries as JSON or CSV.

Examples:
  # Export everything from a day as CSV
  bastion audit export --format csv --time-range "2026-10-01T00:00:00Z/2026-10-02T00:00:00Z" -o audit.csv

  # Export errors as pretty JSON
  bastion audit export --action error --pretty`,
	RunE: exportAudit,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify audit entry digests",
	Long: `Recompute the SHA-256 digest of every matching entry and compare it with
the stored digest. Exits non-zero when any entry does not match.

Examples:
  bastion audit verify
  bastion audit verify --user user-123 --limit 10000`,
	RunE: verifyAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditStatsCmd, auditExportCmd, auditVerifyCmd)

	for _, cmd := range []*cobra.Command{auditQueryCmd, auditExportCmd, auditVerifyCmd} {
		cmd.Flags().StringVar(&auditFlags.user, "user", "", "filter by user ID")
		cmd.Flags().StringVar(&auditFlags.action, "action", "", "filter by action (query, response, guardrail_block, error)")
		cmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		cmd.Flags().IntVar(&auditFlags.limit, "limit", audit.DefaultQueryLimit, "max entries")
	}
	auditStatsCmd.Flags().StringVar(&auditFlags.user, "user", "", "restrict to one user ID")

	auditQueryCmd.Flags().StringVar(&auditFlags.queryFormat, "format", "text", "output format: text, json, csv")
	auditStatsCmd.Flags().StringVar(&auditFlags.statsFormat, "format", "text", "output format: text, json")
	auditExportCmd.Flags().StringVar(&auditFlags.exportFormat, "format", "json", "export format: json, csv")
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
	auditExportCmd.Flags().BoolVar(&auditFlags.pretty, "pretty", false, "indent JSON output")
}

// entryTable renders audit entries as rows.
type entryTable []audit.Entry

func (t entryTable) Header() []string {
	return []string{"ID", "TIMESTAMP", "USER", "ACTION", "PROVIDER", "VIOLATIONS"}
}

func (t entryTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, e := range t {
		rows[i] = []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			e.UserID,
			string(e.Action),
			e.Provider,
			strings.Join(e.Violations, "; "),
		}
	}
	return rows
}

// statsView renders audit statistics as a per-action table.
type statsView struct {
	audit.Statistics
}

func (s statsView) Header() []string {
	return []string{"ACTION", "COUNT"}
}

func (s statsView) Rows() [][]string {
	actions := make([]string, 0, len(s.ByAction))
	for a := range s.ByAction {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)

	rows := make([][]string, 0, len(actions)+1)
	for _, a := range actions {
		rows = append(rows, []string{a, strconv.FormatInt(s.ByAction[audit.Action(a)], 10)})
	}
	return append(rows, []string{"total", strconv.FormatInt(s.TotalLogs, 10)})
}

func queryAudit(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditFlags.queryFormat)
	if err != nil {
		return err
	}
	query, err := auditQuery()
	if err != nil {
		return err
	}

	return withAuditLogger(cmd.Context(), func(ctx context.Context, logger *audit.Logger) error {
		entries, err := logger.QueryLogs(ctx, query)
		if err != nil {
			return cli.NewCommandError("audit query", err)
		}

		var data any = entryTable(entries)
		if format == cli.FormatJSON {
			data = entries
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
	})
}

func auditStats(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditFlags.statsFormat)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("format", "stats supports text and json output")
	}

	return withAuditLogger(cmd.Context(), func(ctx context.Context, logger *audit.Logger) error {
		stats, err := logger.GetStatistics(ctx, auditFlags.user)
		if err != nil {
			return cli.NewCommandError("audit stats", err)
		}

		out := cmd.OutOrStdout()
		if format == cli.FormatJSON {
			return cli.NewFormatter(format).FormatTo(out, stats)
		}

		if err := cli.NewFormatter(format).FormatTo(out, statsView{stats}); err != nil {
			return err
		}
		if len(stats.RecentViolations) > 0 {
			fmt.Fprintln(out, "\nRecent guardrail blocks:")
			return cli.NewFormatter(format).FormatTo(out, entryTable(stats.RecentViolations))
		}
		return nil
	})
}

func exportAudit(cmd *cobra.Command, args []string) error {
	exporter, ok := export.ForFormat(auditFlags.exportFormat, auditFlags.pretty)
	if !ok {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported export format %q (supported: json, csv)", auditFlags.exportFormat))
	}
	query, err := auditQuery()
	if err != nil {
		return err
	}

	return withAuditLogger(cmd.Context(), func(ctx context.Context, logger *audit.Logger) error {
		entries, err := logger.QueryLogs(ctx, query)
		if err != nil {
			return cli.NewCommandError("audit export", err)
		}

		var w io.Writer = cmd.OutOrStdout()
		if auditFlags.output != "" {
			f, err := os.Create(auditFlags.output)
			if err != nil {
				return cli.NewCommandError("audit export", err)
			}
			defer f.Close()
			w = f
		}

		if err := exporter.Export(ctx, entries, w); err != nil {
			return cli.NewCommandError("audit export", err)
		}
		if auditFlags.output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d entries to %s\n", len(entries), auditFlags.output)
		}
		return nil
	})
}

func verifyAudit(cmd *cobra.Command, args []string) error {
	query, err := auditQuery()
	if err != nil {
		return err
	}

	return withAuditLogger(cmd.Context(), func(ctx context.Context, logger *audit.Logger) error {
		report, err := logger.Verify(ctx, query)
		if err != nil {
			return cli.NewCommandError("audit verify", err)
		}

		out := cmd.OutOrStdout()
		if report.OK() {
			fmt.Fprintf(out, "✓ %d entries verified\n", report.Checked)
			return nil
		}

		fmt.Fprintf(out, "✗ %d of %d entries failed verification:\n", len(report.Mismatched), report.Checked)
		for _, id := range report.Mismatched {
			fmt.Fprintf(out, "  - %s\n", id)
		}
		return cli.NewCommandError("audit verify", fmt.Errorf("%d digest mismatches", len(report.Mismatched)))
	})
}

// auditQuery builds the query described by the filter flags.
func auditQuery() (audit.Query, error) {
	q := audit.Query{
		UserID: auditFlags.user,
		Limit:  auditFlags.limit,
	}

	if auditFlags.action != "" {
		action, err := audit.ParseAction(auditFlags.action)
		if err != nil {
			return audit.Query{}, cli.NewConfigError("action", err.Error())
		}
		q.Action = action
	}

	if auditFlags.timeRange != "" {
		start, end, err := parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return audit.Query{}, cli.NewConfigError("time-range", err.Error())
		}
		q.Start, q.End = &start, &end
	}

	if err := audit.ValidateQuery(&q); err != nil {
		return audit.Query{}, cli.NewConfigError("query", err.Error())
	}
	return q, nil
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

// withAuditLogger opens the configured audit backend for the duration of fn.
func withAuditLogger(ctx context.Context, fn func(ctx context.Context, logger *audit.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sink, err := openAuditSink(&cfg.Audit)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	logger := audit.NewLogger(sink)
	defer logger.Close()

	return fn(ctx, logger)
}
