package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/protochain/internal/graph"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/object"
)

type inspectOptions struct {
	format     string
	showValues bool
	all        bool
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <graph-file> [object]",
		Short: "Show objects, prototypes and property descriptors",
		Long: `Inspect prints the objects declared in a graph file with their
prototype and own property descriptors, without filtering.

Given an object, the output follows its prototype chain from the object
itself up to the root, one section per level. Without an object every
declared object is listed; --all includes the base prototype.

Flags are shown as three letters: w(ritable), e(numerable), c(onfigurable),
with "-" for false and "a" in the first position for accessors.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			return runInspect(cmd.Context(), cmd, args[0], name, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "table", "output format: table, json, yaml")
	f.BoolVar(&opts.showValues, "show-values", false, "include property values in table output")
	f.BoolVar(&opts.all, "all", false, "include the base prototype when listing every object")

	return cmd
}

type inspectResult struct {
	Graph   string       `json:"graph"`
	Objects []objectInfo `json:"objects"`
}

type objectInfo struct {
	Name       string         `json:"name"`
	Prototype  *string        `json:"prototype"`
	Properties []propertyInfo `json:"properties"`
}

type propertyInfo struct {
	Name         string `json:"name"`
	Flags        string `json:"flags"`
	Value        any    `json:"value,omitempty"`
	Writable     bool   `json:"writable"`
	Enumerable   bool   `json:"enumerable"`
	Configurable bool   `json:"configurable"`
	Accessor     bool   `json:"accessor,omitempty"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, path, name string, opts *inspectOptions) error {
	logger := logging.ForGraph(ctx, path, name)

	g, err := loadGraph(ctx, path)
	if err != nil {
		return err
	}

	objects, err := inspectTargets(g, name, opts.all)
	if err != nil {
		return err
	}

	result := inspectResult{Graph: path}
	for _, o := range objects {
		result.Objects = append(result.Objects, describeObject(o))
	}

	logger.Debug("inspecting", slog.Int("objects", len(result.Objects)))

	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		return renderJSON(w, result)
	case "yaml":
		return renderYAML(w, result)
	case "table", "text":
		return renderInspectTable(w, result, opts.showValues)
	default:
		return &ExitError{Code: 2, Err: fmt.Errorf("unknown format %q: expected table, json, yaml", opts.format)}
	}
}

// inspectTargets returns the chain of name, self first, or every declared
// object when name is empty.
func inspectTargets(g *graph.Graph, name string, withBase bool) ([]*object.Object, error) {
	if name != "" {
		o, err := resolveTarget(g, name)
		if err != nil {
			return nil, err
		}

		return o.Chain(), nil
	}

	var objects []*object.Object

	if withBase {
		objects = append(objects, g.Base())
	}

	for _, n := range g.Names() {
		o, err := g.Object(n)
		if err != nil {
			return nil, &ExitError{Code: 1, Err: err}
		}

		objects = append(objects, o)
	}

	return objects, nil
}

func describeObject(o *object.Object) objectInfo {
	info := objectInfo{Name: o.Name(), Properties: []propertyInfo{}}

	if p := o.Prototype(); p != nil {
		proto := p.Name()
		info.Prototype = &proto
	}

	for _, n := range o.OwnPropertyNames() {
		d, _ := o.OwnDescriptor(n)
		info.Properties = append(info.Properties, propertyInfo{
			Name:         n,
			Flags:        d.Flags(),
			Value:        d.Value,
			Writable:     d.Writable,
			Enumerable:   d.Enumerable,
			Configurable: d.Configurable,
			Accessor:     d.Accessor,
		})
	}

	return info
}

func renderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("marshaling JSON: %w", err)}
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func renderYAML(w io.Writer, v any) error {
	data, err := sigsyaml.Marshal(v)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("marshaling YAML: %w", err)}
	}

	_, err = w.Write(data)

	return err
}

func renderInspectTable(w io.Writer, result inspectResult, showValues bool) error {
	for i, o := range result.Objects {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}

		proto := "null"
		if o.Prototype != nil {
			proto = *o.Prototype
		}

		_, _ = fmt.Fprintf(w, "%s (prototype: %s)\n", o.Name, proto)

		if len(o.Properties) == 0 {
			_, _ = fmt.Fprintln(w, "  (no own properties)")
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		if showValues {
			_, _ = fmt.Fprintln(tw, "  NAME\tFLAGS\tVALUE")
		} else {
			_, _ = fmt.Fprintln(tw, "  NAME\tFLAGS")
		}

		for _, p := range o.Properties {
			if showValues {
				_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, p.Flags, formatValue(p))
			} else {
				_, _ = fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Flags)
			}
		}

		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func formatValue(p propertyInfo) string {
	switch {
	case p.Accessor:
		return "<accessor>"
	case p.Value == nil:
		return "undefined"
	default:
		return fmt.Sprintf("%v", p.Value)
	}
}
