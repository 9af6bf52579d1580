package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/store"
)

// PartsOptions holds flags for the parts command.
type PartsOptions struct {
	*RootOptions
	DBPath string
}

// NewPartsCommand creates the parts command: list stored part snapshots.
func NewPartsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PartsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "parts",
		Short:         "List stored part snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParts(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "sqlite database path")
	cmd.MarkFlagRequired("db")
	return cmd
}

func runParts(opts *PartsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	infos, err := st.ListParts(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "listing parts", err)
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "no snapshots stored")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s  %-20s %s\n", shortHash(info.Hash), info.Name, info.CreatedAt)
	}
	return nil
}
