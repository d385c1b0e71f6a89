package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/hupe1980/protochain/internal/graph"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <graph-file>",
		Short: "Validate a graph file",
		Long: `Validate parses a graph file, resolves every prototype and applies
every property definition, reporting all problems found: unknown
prototypes, prototype cycles, duplicate objects and invalid
redefinitions of non-configurable properties.

Properties that shadow an inherited property of the same name are
reported as warnings. Returns exit code 2 on validation failure (or on
warnings with --strict).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied graph path
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("reading graph file: %w", err)}
	}

	g, err := graph.Parse(data)
	if err != nil {
		writeValidationErrors(cmd.ErrOrStderr(), err)
		return &ExitError{Code: 2, Err: fmt.Errorf("validation failed: %w", err)}
	}

	warnings := shadowWarnings(g)
	for _, w := range warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	if opts.strict && len(warnings) > 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", len(warnings))}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %d object(s).\n", len(g.Names()))

	return nil
}

// writeValidationErrors prints one line per aggregated error.
func writeValidationErrors(w io.Writer, err error) {
	var agg utilerrors.Aggregate
	if !errors.As(err, &agg) {
		_, _ = fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	for _, e := range agg.Errors() {
		_, _ = fmt.Fprintf(w, "error: %v\n", e)
	}
}

// shadowWarnings lists own properties that hide an inherited property.
func shadowWarnings(g *graph.Graph) []string {
	var warnings []string

	for _, name := range g.Names() {
		o, err := g.Object(name)
		if err != nil {
			continue
		}

		proto := o.Prototype()
		if proto == nil {
			continue
		}

		for _, prop := range o.OwnPropertyNames() {
			if _, owner, ok := proto.Lookup(prop); ok {
				warnings = append(warnings, fmt.Sprintf("%s.%s shadows %s.%s", name, prop, owner.Name(), prop))
			}
		}
	}

	return warnings
}
