package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bastion-hq/gateway/pkg/cli"
	"bastion-hq/gateway/pkg/guardrail"
)

var checkFlags struct {
	phase  string
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Run the guardrails over text without starting the server",
	Long: `Run the configured guardrails over a piece of text and print the verdict.

The text is taken from the arguments, or from stdin when no argument or a
single "-" is given. The command exits with status 3 when any checked phase
blocks the text.

Examples:
  # Check a prompt as input
  bastion check "My SSN is 123-45-6789"

  # Check a provider response as output
  bastion check --phase output "def handler(): pass"

  # Check stdin against both phases and print JSON
  cat prompt.txt | bastion check --phase both --format json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.phase, "phase", "input", "phase to check: input, output, both")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

// checkReport is the result of an offline guardrail check.
type checkReport struct {
	Text      string                       `json:"text"`
	PII       guardrail.PIIDetection       `json:"pii"`
	Injection guardrail.InjectionDetection `json:"injection"`
	Input     *guardrail.GuardrailCheck    `json:"input,omitempty"`
	Output    *guardrail.GuardrailCheck    `json:"output,omitempty"`
}

// blocked returns the highest risk level of a failed phase, or "" when every
// checked phase passed.
func (r checkReport) blocked() guardrail.RiskLevel {
	var risk guardrail.RiskLevel
	for _, c := range []*guardrail.GuardrailCheck{r.Input, r.Output} {
		if c != nil && !c.Passed {
			risk = guardrail.Escalate(risk, c.RiskLevel)
		}
	}
	return risk
}

func (r checkReport) String() string {
	var b strings.Builder
	writePhase := func(name string, c *guardrail.GuardrailCheck) {
		if c == nil {
			return
		}
		verdict := "✓ passed"
		if !c.Passed {
			verdict = "✗ blocked"
		}
		fmt.Fprintf(&b, "%s: %s (risk level %s)\n", name, verdict, c.RiskLevel)
		for _, v := range c.Violations {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
	}

	writePhase("input", r.Input)
	writePhase("output", r.Output)

	if r.PII.HasPII {
		types := make([]string, len(r.PII.PIITypes))
		for i, t := range r.PII.PIITypes {
			types[i] = string(t)
		}
		fmt.Fprintf(&b, "pii: %s\n", strings.Join(types, ", "))
		fmt.Fprintf(&b, "sanitized: %s\n", r.PII.Sanitized)
	}
	if r.Injection.IsInjection {
		fmt.Fprintf(&b, "injection: %s (confidence %.2f)\n", r.Injection.InjectionType, r.Injection.Confidence)
	}
	return strings.TrimRight(b.String(), "\n")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return err
	}

	text, err := checkInput(cmd.InOrStdin(), args)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := newGuardrailEngine(&cfg.Guardrails)
	if err != nil {
		return cli.WrapConfigError(err)
	}

	report, err := checkText(engine, text, checkFlags.phase)
	if err != nil {
		return err
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return cli.NewCommandError("check", err)
	}

	if risk := report.blocked(); risk != "" {
		return &cli.BlockedError{RiskLevel: string(risk)}
	}
	return nil
}

func checkText(engine *guardrail.Engine, text, phase string) (checkReport, error) {
	report := checkReport{
		Text:      text,
		PII:       engine.DetectAndSanitizePII(text),
		Injection: engine.DetectInjection(text),
	}

	switch strings.ToLower(phase) {
	case "input":
		in := engine.ValidateInput(text)
		report.Input = &in
	case "output":
		out := engine.ValidateOutput(text)
		report.Output = &out
	case "both":
		in := engine.ValidateInput(text)
		out := engine.ValidateOutput(text)
		report.Input, report.Output = &in, &out
	default:
		return checkReport{}, cli.NewConfigError("phase", fmt.Sprintf("unsupported phase %q (supported: input, output, both)", phase))
	}
	return report, nil
}

func checkInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to check")
	}
	return text, nil
}
