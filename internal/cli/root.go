// Package cli implements the partforge command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/tolerance"
)

// Error codes used in JSON error envelopes.
const (
	ErrCodeCompile  = "E_COMPILE"
	ErrCodeRead     = "E_READ"
	ErrCodeWrite    = "E_WRITE"
	ErrCodeStore    = "E_STORE"
	ErrCodeIssues   = "E_ISSUES"
	ErrCodeNotFound = "E_NOT_FOUND"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Tolerances string // optional YAML tolerance-class table
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the partforge CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "partforge",
		Short: "partforge - parametric part modeling core",
		Long:  "Compile, validate, rebuild, and analyze code-first parametric part models.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Tolerances, "tolerances", "", "YAML tolerance-class table overriding the built-in one")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRebuildCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewPartsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadTable resolves the tolerance-class table: the embedded default, or
// the user's YAML file when --tolerances is set.
func loadTable(opts *RootOptions) (*tolerance.Table, error) {
	if opts.Tolerances == "" {
		return tolerance.Default(), nil
	}
	tbl, err := tolerance.Load(opts.Tolerances)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading tolerance table", err)
	}
	return tbl, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
