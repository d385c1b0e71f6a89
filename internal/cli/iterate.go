package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/protochain/internal/config"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/output"
)

type iterateOptions struct {
	filterOptions

	limit  int
	output string
}

func newIterateCommand() *cobra.Command {
	opts := &iterateOptions{}

	cmd := &cobra.Command{
		Use:   "iterate <graph-file> [object]",
		Short: "List property names along an object's prototype chain",
		Long: `Iterate walks the prototype chain of an object declared in a graph
file and prints the own property names of every level, root-most level
first and the object's own names last. Shadowed names appear once per
level that declares them.

A descriptor filter keeps only properties whose writable, enumerable and
configurable attributes equal the requested values. Filters come from a
named --preset, --filter pairs and the per-attribute flags, applied in that
order.

Without an object the traversal has no target and yields the absent
marker, printed as "undefined". --limit reads exactly N elements, so reads
past the end show the marker too.`,
		Example: `  protochain iterate graph.yaml p2
  protochain iterate graph.yaml p2 --filter writable=false,configurable=false
  protochain iterate graph.yaml p2 --enumerable=true --format table
  protochain iterate graph.yaml p1 --limit 20`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			return runIterate(cmd.Context(), cmd, args[0], name, opts)
		},
	}

	registerFilterFlags(cmd, &opts.filterOptions)

	f := cmd.Flags()
	f.String("format", "", "output format: text, json, yaml, table (default from config)")
	f.IntVar(&opts.limit, "limit", 0, "read exactly N elements (0 reads until exhausted)")
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")

	return cmd
}

func runIterate(ctx context.Context, cmd *cobra.Command, path, name string, opts *iterateOptions) error {
	if opts.limit < 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("--limit must not be negative, got %d", opts.limit)}
	}

	logger := logging.ForGraph(ctx, path, name)

	g, err := loadGraph(ctx, path)
	if err != nil {
		return err
	}

	target, err := resolveTarget(g, name)
	if err != nil {
		return err
	}

	filter, err := opts.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	res := traverse(name, target, filter, opts.limit)

	logger.Debug("traversal complete",
		slog.Int("names", len(res.Names)),
		slog.Int("levels", len(res.Levels)),
	)

	w := output.NewWriter(opts.output, cmd.OutOrStdout(), logger)

	if err := renderResult(w, res, config.FromContext(ctx).Format); err != nil {
		return err
	}

	if opts.output != "" {
		logger.Info("traversal written", slog.String("path", opts.output))
	}

	return nil
}
