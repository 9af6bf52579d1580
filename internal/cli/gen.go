package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/dsl"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Output string
}

// NewGenCommand creates the gen command: IR JSON in, DSL text out. It is
// the inverse of compile; generating and recompiling yields a structurally
// equal part.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "gen <ir-file>",
		Short:         "Generate DSL text from IR JSON",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	return cmd
}

func runGen(opts *GenOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	part, err := decodePartFile(path)
	if err != nil {
		return err
	}
	text := dsl.Generate(part)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("writing %s", opts.Output), err)
		}
		formatter.VerboseLog("wrote %s", opts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]string{"part": part.Name, "dsl": text})
	}
	if opts.Output == "" {
		fmt.Fprint(formatter.Writer, text)
	} else {
		fmt.Fprintf(formatter.Writer, "Generated %q to %s\n", part.Name, opts.Output)
	}
	return nil
}
