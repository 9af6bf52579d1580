package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationReport is the JSON payload of the validate command.
type ValidationReport struct {
	Part     string               `json:"part"`
	Issues   []ir.ValidationIssue `json:"issues"`
	Errors   int                  `json:"errors"`
	Warnings int                  `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <part-file>",
		Short: "Run semantic validation over a part",
		Long: `Compile a part description and run every semantic check.

All checks run regardless of earlier findings; the full ordered issue
list is always reported. Error-severity issues set exit code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	part, _, err := loadDSL(formatter, path)
	if err != nil {
		return err
	}

	tbl, err := loadTable(opts.RootOptions)
	if err != nil {
		return err
	}
	issues := validate.Validate(tbl, part)
	report := buildReport(part, issues)

	if formatter.JSON() {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		renderReport(formatter.Writer, report)
	}

	if report.Errors > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d error issue(s)", report.Errors))
	}
	return nil
}

func buildReport(part *ir.Part, issues []ir.ValidationIssue) ValidationReport {
	report := ValidationReport{Part: part.Name, Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case ir.SeverityError:
			report.Errors++
		case ir.SeverityWarning:
			report.Warnings++
		}
	}
	return report
}

func renderReport(w io.Writer, report ValidationReport) {
	if len(report.Issues) == 0 {
		fmt.Fprintf(w, "%s: no issues\n", report.Part)
		return
	}
	fmt.Fprintf(w, "%s: %d issue(s), %d error(s), %d warning(s)\n",
		report.Part, len(report.Issues), report.Errors, report.Warnings)
	for _, issue := range report.Issues {
		fmt.Fprintf(w, "  %-7s [%s] %s%s\n", issue.Severity, issue.Code, issue.Message, relatedSuffix(issue))
	}
}

func relatedSuffix(issue ir.ValidationIssue) string {
	var refs []string
	refs = append(refs, issue.RelatedParams...)
	refs = append(refs, issue.RelatedFeatures...)
	refs = append(refs, issue.RelatedChains...)
	if len(refs) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(refs, ", "))
}
