package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the orgtree command tree. Logs go to the command's
// error stream, results to its output stream.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "orgtree",
		Short:         "Inspect and rearrange org hierarchy files",
		Long:          `orgtree renders, validates and reorders company hierarchies (company, business unit, region, site, asset group, work group, role) using the same engine as the vantage server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newMoveCmd())
	root.AddCommand(newValidateCmd())

	return root
}

// Execute runs the CLI with the given context
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
