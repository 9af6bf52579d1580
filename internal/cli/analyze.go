package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/tolerance"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
}

// ChainReport is one chain's worst-case stackup in the analyze payload.
type ChainReport struct {
	Chain    string   `json:"chain"`
	Eval     ir.Eval  `json:"eval"`
	Target   *float64 `json:"target_tolerance,omitempty"`
	Feasible *bool    `json:"feasible,omitempty"`
}

// NewAnalyzeCommand creates the analyze command: worst-case tolerance
// stackups for every declared chain.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <part-file>",
		Short: "Analyze worst-case tolerance chains",
		Long: `Compile a part description and evaluate every dimension chain.

Stackups are worst-case, not statistical: extreme deviations sum
directly. A chain with a declared target tolerance also reports
feasibility against the symmetric target band.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}
	return cmd
}

func runAnalyze(opts *AnalyzeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	part, _, err := loadDSL(formatter, path)
	if err != nil {
		return err
	}

	tbl, err := loadTable(opts.RootOptions)
	if err != nil {
		return err
	}
	reports := make([]ChainReport, 0, len(part.Chains))
	infeasible := 0
	for _, chain := range part.Chains {
		report := ChainReport{
			Chain: chain.Name,
			Eval:  tolerance.EvaluateChain(tbl, part, chain),
		}
		if chain.TargetTolerance != nil {
			report.Target = chain.TargetTolerance
			ok := tolerance.Feasible(report.Eval, *chain.TargetTolerance)
			report.Feasible = &ok
			if !ok {
				infeasible++
			}
		}
		reports = append(reports, report)
	}

	if formatter.JSON() {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		renderAnalysis(formatter.Writer, part, reports)
	}

	if infeasible > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d infeasible chain(s)", infeasible))
	}
	return nil
}

func renderAnalysis(w io.Writer, part *ir.Part, reports []ChainReport) {
	if len(reports) == 0 {
		fmt.Fprintf(w, "%s: no chains declared\n", part.Name)
		return
	}
	for _, r := range reports {
		fmt.Fprintf(w, "%s: nominal %g  min %g  max %g", r.Chain, r.Eval.Nominal, r.Eval.Min, r.Eval.Max)
		if r.Feasible != nil {
			if *r.Feasible {
				fmt.Fprintf(w, "  feasible within ±%g", *r.Target)
			} else {
				fmt.Fprintf(w, "  INFEASIBLE against ±%g", *r.Target)
			}
		}
		fmt.Fprintln(w)
	}
}
