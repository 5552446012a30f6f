package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	engine "vantage/internal/orgtree"
)

type renderOpts struct {
	expanded string // all, none, or comma-separated item IDs
	showIDs  bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{expanded: "all"}

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print a hierarchy as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := readCompany(args[0])
			if err != nil {
				return err
			}
			flat := engine.Flatten(engine.Adapt(company))
			visible := engine.FilterVisible(flat, engine.ParseExpanded(opts.expanded, flat))

			loggerFromContext(cmd.Context()).Debug("rendering", "items", len(flat), "visible", len(visible))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), engine.NewRenderer(opts.showIDs).Render(visible))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.expanded, "expanded", opts.expanded, "expanded items: all, none, or comma-separated IDs")
	cmd.Flags().BoolVar(&opts.showIDs, "show-ids", false, "append item IDs")

	return cmd
}
