package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vantage/internal/client"
	"vantage/internal/config"
	"vantage/internal/domain"
	engine "vantage/internal/orgtree"
)

// moveOpts holds the flags of the move command
type moveOpts struct {
	active   string  // item being dragged
	over     string  // item it is dropped over
	offset   float64 // horizontal drag offset in pixels
	indent   int     // pixels per depth level
	expanded string  // expansion the drag happens in
	write    string  // file to write the rearranged hierarchy to
	push     string  // server base URL
	company  int64   // company to push to, defaults to the file's
	token    string  // bearer token for push
}

func newMoveCmd() *cobra.Command {
	opts := moveOpts{indent: config.DefaultIndentationWidth, expanded: "all"}

	cmd := &cobra.Command{
		Use:   "move FILE",
		Short: "Simulate a drag and print the reorder payload",
		Long: `move drags --active over --over with a horizontal --offset, the way the
tree editor does, and prints the move result as JSON. Rejected moves exit
non-zero with the user-facing message.`,
		Example: `  orgtree move acme.yaml --active work_group_11 --over work_group_13
  orgtree move acme.yaml --active role_3 --over role_2 --offset 50 --write acme.yaml
  orgtree move acme.yaml --active site_2 --over region_1 --push http://localhost:8080 --token $TOKEN`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.active == "" || opts.over == "" {
				return errors.New("--active and --over are required")
			}
			if opts.indent <= 0 {
				return fmt.Errorf("--indent must be positive, got %d", opts.indent)
			}
			return runMove(cmd.Context(), args[0], &opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.active, "active", "", "ID of the dragged item (e.g. work_group_11)")
	cmd.Flags().StringVar(&opts.over, "over", "", "ID of the item dropped over")
	cmd.Flags().Float64Var(&opts.offset, "offset", 0, "horizontal drag offset in pixels")
	cmd.Flags().IntVar(&opts.indent, "indent", opts.indent, "indentation width in pixels")
	cmd.Flags().StringVar(&opts.expanded, "expanded", opts.expanded, "expanded items: all, none, or comma-separated IDs")
	cmd.Flags().StringVar(&opts.write, "write", "", "write the rearranged hierarchy to this file")
	cmd.Flags().StringVar(&opts.push, "push", "", "server base URL to persist the payload to")
	cmd.Flags().Int64Var(&opts.company, "company", 0, "company ID to push to (default: the file's company)")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token for --push")

	return cmd
}

func runMove(ctx context.Context, path string, opts *moveOpts, out io.Writer) error {
	logger := loggerFromContext(ctx)

	company, err := readCompany(path)
	if err != nil {
		return err
	}

	session := engine.NewSession(engine.NewValidator(nil), opts.indent)
	session.Load(company)
	session.Collapse(session.Expanded()...)
	for id := range engine.ParseExpanded(opts.expanded, session.Flattened()) {
		session.Expand(id)
	}

	if err := session.DragStart(opts.active); err != nil {
		return err
	}
	projection, err := session.DragMove(opts.over, opts.offset)
	if err != nil {
		return fmt.Errorf("drop over %s: %w", opts.over, err)
	}
	logger.Debug("projection", "depth", projection.Depth, "min", projection.MinDepth, "max", projection.MaxDepth, "parent", projection.ParentID)

	result, err := session.DragEnd()
	if err != nil {
		var rejected *domain.MoveRejectedError
		if errors.As(err, &rejected) {
			logger.Warn("move rejected", "reason", rejected.Reason, "conflicting", rejected.ConflictingID)
		}
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Moved {
		logger.Info("nothing moved", "active", opts.active)
		return nil
	}
	logger.Info("moved", "active", result.ActiveID, "parent", result.Placement.ParentID, "records", len(result.Payload))

	if opts.write != "" {
		moved, err := engine.ToCompany(session.Tree())
		if err != nil {
			return err
		}
		if err := writeCompany(opts.write, moved); err != nil {
			return err
		}
		logger.Info("wrote hierarchy", "file", opts.write)
	}

	if opts.push != "" {
		companyID := opts.company
		if companyID == 0 {
			companyID = company.ID
		}
		if err := client.NewReorderClient(opts.push, opts.token).Persist(ctx, companyID, result.Payload); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		logger.Info("pushed payload", "server", opts.push, "company_id", companyID)
	}
	return nil
}
