package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	engine "vantage/internal/orgtree"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check the structural rules of a hierarchy file",
		Long:  "validate checks tier parenting, depth caps, role nesting and shared role uniqueness per work group. All violations are reported.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := readCompany(args[0])
			if err != nil {
				return err
			}
			tree := engine.Adapt(company)
			if err := engine.NewValidator(nil).ValidateTree(tree); err != nil {
				return fmt.Errorf("%s is invalid:\n%w", args[0], err)
			}

			loggerFromContext(cmd.Context()).Info("hierarchy is valid", "file", args[0], "items", len(engine.Flatten(tree)))
			return nil
		},
	}
}
