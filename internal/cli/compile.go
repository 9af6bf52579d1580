package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// NewCompileCommand creates the compile command: DSL text in, IR JSON out.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <part-file>",
		Short: "Compile DSL text to IR JSON",
		Long: `Compile a part description file to its IR JSON form.

The IR field naming is frozen; any consumer that serializes or
deserializes parts reads exactly this shape.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	part, _, err := loadDSL(formatter, path)
	if err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(part, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding ir", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(pretty, '\n'), 0o644); err != nil {
			if ferr := formatter.Error(ErrCodeWrite, fmt.Sprintf("writing %s: %v", opts.Output, err), nil); ferr != nil {
				return ferr
			}
			return NewExitError(ExitCommandError, "write failed")
		}
		formatter.VerboseLog("wrote %s", opts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(part)
	}
	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, string(pretty))
	} else {
		fmt.Fprintf(formatter.Writer, "Compiled %q to %s\n", part.Name, opts.Output)
	}
	return nil
}

// decodePartFile reads an IR JSON file back into a Part.
func decodePartFile(path string) (*ir.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", path), err)
	}
	var part ir.Part
	if err := json.Unmarshal(data, &part); err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("decoding %s", path), err)
	}
	return &part, nil
}
