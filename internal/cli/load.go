package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/protochain/internal/graph"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/object"
	"github.com/hupe1980/protochain/internal/output"
	"github.com/hupe1980/protochain/internal/propchain"
)

// loadGraph reads and builds a graph file. Read failures exit with 1,
// malformed or invalid graphs with 2.
func loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	logger := logging.ForGraph(ctx, path, "")

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied graph path
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("reading graph file: %w", err)}
	}

	g, err := graph.Parse(data)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("loading graph %q: %w", path, err)}
	}

	logger.Debug("graph loaded", slog.Int("objects", len(g.Names())))

	return g, nil
}

// resolveTarget looks up the traversal target. An empty name selects no
// object at all, which traverses to the absent marker.
func resolveTarget(g *graph.Graph, name string) (*object.Object, error) {
	if name == "" {
		return nil, nil
	}

	o, err := g.Object(name)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: err}
	}

	return o, nil
}

// traverse runs the iterator over target. With limit > 0 exactly limit
// elements are read through Next, so reads past the end show the absent
// marker; otherwise the whole sequence is drained.
func traverse(name string, target *object.Object, filter propchain.Filter, limit int) *output.Result {
	it := propchain.Iterate(target, filter)

	var keys []propchain.Key

	if limit > 0 {
		for range limit {
			keys = append(keys, it.Next())
		}
	} else {
		for k := range it.All() {
			keys = append(keys, k)
		}
	}

	return output.NewResult(name, filter, keys, propchain.Levels(target, filter))
}

// renderResult renders res in format and hands it to w.
func renderResult(w output.Writer, res *output.Result, format string) error {
	var buf bytes.Buffer

	if err := output.Render(&buf, res, format); err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	if err := w.Write(buf.Bytes()); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
