package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mlmdq/internal/store"
)

// InitResult reports an initialized store.
type InitResult struct {
	Path string `json:"path"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <db>",
		Short: "Create an empty metadata store",
		Long: `Create a SQLite metadata store with the artifact, execution and
context tables. Running init on an existing store is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := store.Open(path)
	if err != nil {
		return outputStoreError(formatter, "opening", err)
	}
	if err := s.Close(); err != nil {
		return outputStoreError(formatter, "closing", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(InitResult{Path: path})
	}
	fmt.Fprintf(formatter.Writer, "✓ Initialized metadata store at %s\n", path)
	return nil
}
