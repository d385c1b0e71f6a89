package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/protochain/internal/config"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/output"
	"github.com/hupe1980/protochain/internal/watch"
)

type watchOptions struct {
	filterOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <graph-file> [object]",
		Short: "Re-run a traversal whenever the graph file changes",
		Long: `Watch monitors a graph file and re-runs the traversal of the given
object each time the file is written, created or replaced.

File changes are debounced to avoid rapid re-runs. Each run prints the
traversal to stdout and a status line to stderr with the number of names
and levels, followed by the properties added, removed or changed in flags
since the previous run. Invalid intermediate states are reported and the
watcher keeps running.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			return runWatch(cmd.Context(), cmd, args[0], name, opts)
		},
	}

	registerFilterFlags(cmd, &opts.filterOptions)
	registerDebounceFlag(cmd, &opts.debounce)

	cmd.Flags().String("format", "", "output format: text, json, yaml, table (default from config)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path, name string, opts *watchOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.ForGraph(ctx, path, name)

	filter, err := opts.resolve(ctx, cmd)
	if err != nil {
		return err
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		g, err := loadGraph(fnCtx, path)
		if err != nil {
			return nil, err
		}

		target, err := resolveTarget(g, name)
		if err != nil {
			return nil, err
		}

		res := traverse(name, target, filter, 0)

		if err := renderResult(output.NewStreamWriter(cmd.OutOrStdout()), res, cfg.Format); err != nil {
			return nil, err
		}

		return &watch.RunResult{Count: len(res.Names), Levels: res.Levels}, nil
	}

	watchOpts := watch.Options{
		Files:    []string{path},
		Debounce: opts.debounce,
		Logger:   logger,
		Out:      cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, runFn)
}
