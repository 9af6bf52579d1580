package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/kernel"
	"github.com/partforge/partforge/internal/rebuild"
	"github.com/partforge/partforge/internal/store"
)

// RebuildOptions holds flags for the rebuild command.
type RebuildOptions struct {
	*RootOptions
	DBPath string
}

// NewRebuildCommand creates the rebuild command: full pipeline from DSL
// text to feature geometry, evaluations, and issues.
func NewRebuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RebuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rebuild <part-file>",
		Short: "Rebuild a part: validate, build features, evaluate chains",
		Long: `Compile a part description and run a full rebuild against the
bounding-box reference kernel.

With --db, the snapshot and its rebuild result are persisted; repeating
a rebuild of an unchanged part reuses the stored result.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "sqlite database path for snapshot persistence")
	return cmd
}

func runRebuild(opts *RebuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	part, src, err := loadDSL(formatter, path)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.DBPath != "" {
		st, err = store.Open(opts.DBPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening database", err)
		}
		defer st.Close()
	}

	result, err := rebuildPart(cmd, opts, formatter, st, part, src)
	if err != nil {
		return err
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		renderRebuild(formatter.Writer, part, result)
	}

	if validationErrors(result.Issues) > 0 {
		return NewExitError(ExitFailure, "rebuild reported error issues")
	}
	return nil
}

func rebuildPart(cmd *cobra.Command, opts *RebuildOptions, formatter *OutputFormatter, st *store.Store, part *ir.Part, src string) (*rebuild.Result, error) {
	ctx := cmd.Context()

	if st != nil {
		hash, err := ir.PartHash(part)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "hashing part", err)
		}
		if cached, err := st.LoadResult(ctx, hash); err == nil {
			formatter.VerboseLog("reusing stored rebuild result for %s", hash)
			return cached, nil
		}
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	tbl, err := loadTable(opts.RootOptions)
	if err != nil {
		return nil, err
	}
	orch := rebuild.NewOrchestrator(kernel.NewBoxKernel(nil), tbl, log)
	result, err := orch.Rebuild(ctx, part)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "rebuild", err)
	}

	if st != nil {
		if _, err := st.SavePart(ctx, part, src); err != nil {
			return nil, WrapExitError(ExitCommandError, "saving snapshot", err)
		}
		if err := st.SaveResult(ctx, result); err != nil {
			return nil, WrapExitError(ExitCommandError, "saving result", err)
		}
		formatter.VerboseLog("stored snapshot %s", result.PartHash)
	}
	return result, nil
}

func renderRebuild(w io.Writer, part *ir.Part, result *rebuild.Result) {
	fmt.Fprintf(w, "%s  (snapshot %s)\n", part.Name, shortHash(result.PartHash))

	if len(result.FeatureResults) > 0 {
		fmt.Fprintln(w, "features:")
		for _, fr := range result.FeatureResults {
			fmt.Fprintf(w, "  %-8s %s\n", fr.Status, fr.Feature)
		}
	}

	if len(result.ParamsEval) > 0 {
		fmt.Fprintln(w, "params:")
		for _, name := range sortedEvalNames(result.ParamsEval) {
			e := result.ParamsEval[name]
			fmt.Fprintf(w, "  %s: nominal %g  [%g, %g]\n", name, e.Nominal, e.Min, e.Max)
		}
	}
	if len(result.ChainsEval) > 0 {
		fmt.Fprintln(w, "chains:")
		for _, name := range sortedEvalNames(result.ChainsEval) {
			e := result.ChainsEval[name]
			fmt.Fprintf(w, "  %s: nominal %g  [%g, %g]\n", name, e.Nominal, e.Min, e.Max)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Fprintln(w, "issues:")
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %-7s [%s] %s\n", issue.Severity, issue.Code, issue.Message)
		}
	} else {
		fmt.Fprintln(w, "no issues")
	}
}

func sortedEvalNames(m map[string]ir.Eval) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validationErrors(issues []ir.ValidationIssue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == ir.SeverityError {
			n++
		}
	}
	return n
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
