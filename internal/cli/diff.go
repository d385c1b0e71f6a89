package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/protochain/internal/compare"
	"github.com/hupe1980/protochain/internal/config"
	"github.com/hupe1980/protochain/internal/propchain"
)

type diffOptions struct {
	filterOptions

	// Filter for the second traversal when comparing one object with itself.
	against *filterValue

	context  int
	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{against: newFilterValue()}

	cmd := &cobra.Command{
		Use:   "diff <graph-file> <object> [other-object]",
		Short: "Compare two traversals",
		Long: `Diff prints a unified diff between two traversals, one name per line.

With two objects both chains are walked with the same filter. With one
object the traversal under the regular filter flags is compared with the
traversal under --against-filter.

Exit codes:
  0  No differences (or differences without --exit-code)
  1  Error
  2  Invalid arguments
  8  Differences found and --exit-code given`,
		Example: `  protochain diff graph.yaml p1 p2
  protochain diff graph.yaml p2 --filter enumerable=true --against-filter enumerable=true,writable=false`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args, opts)
		},
	}

	registerFilterFlags(cmd, &opts.filterOptions)

	f := cmd.Flags()
	f.Var(opts.against, "against-filter", "filter for the second traversal of a single object")
	f.IntVar(&opts.context, "context", 3, "number of context lines")
	f.BoolVar(&opts.exitCode, "exit-code", false, "exit with code 8 when the traversals differ")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, args []string, opts *diffOptions) error {
	cfg := config.FromContext(ctx)

	g, err := loadGraph(ctx, args[0])
	if err != nil {
		return err
	}

	filter, err := opts.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	leftName, rightName := args[1], args[1]
	leftFilter, rightFilter := filter, filter

	if len(args) == 3 {
		rightName = args[2]
	} else {
		if err := requireFlag(cmd, "against-filter", "when diffing a single object"); err != nil {
			return err
		}

		rightFilter = opts.against.filter

		if cfg.StrictFilter {
			if err := rightFilter.Validate(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}
		}
	}

	left, err := resolveTarget(g, leftName)
	if err != nil {
		return err
	}

	right, err := resolveTarget(g, rightName)
	if err != nil {
		return err
	}

	diffOpts := compare.Options{
		OldLabel: diffLabel(leftName, leftFilter),
		NewLabel: diffLabel(rightName, rightFilter),
		Context:  opts.context,
	}

	res, err := compare.Traversals(propchain.Names(left, leftFilter), propchain.Names(right, rightFilter), diffOpts)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	compare.Write(cmd.OutOrStdout(), res, !cfg.NoColor)

	if res.HasDifferences && opts.exitCode {
		return &ExitError{
			Code: 8,
			Err:  fmt.Errorf("traversals differ: +%d -%d", res.Added, res.Removed),
		}
	}

	return nil
}

func diffLabel(name string, filter propchain.Filter) string {
	if len(filter) == 0 {
		return name
	}

	return fmt.Sprintf("%s [%s]", name, filter)
}
