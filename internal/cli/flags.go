package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/protochain/internal/config"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/propchain"
)

// filterValue is a pflag.Value collecting attr=bool pairs. Repeated flags
// merge, later pairs winning.
type filterValue struct {
	filter propchain.Filter
}

var _ pflag.Value = (*filterValue)(nil)

func newFilterValue() *filterValue {
	return &filterValue{filter: propchain.Filter{}}
}

func (v *filterValue) String() string { return v.filter.String() }

// Set parses without attribute validation so that strictness can be decided
// by configuration once all sources are merged.
func (v *filterValue) Set(s string) error {
	f, err := propchain.ParseFilterLenient(s)
	if err != nil {
		return err
	}

	maps.Copy(v.filter, f)

	return nil
}

func (v *filterValue) Type() string { return "filter" }

// filterOptions holds the descriptor filter flags shared by the traversal
// commands.
type filterOptions struct {
	filter       *filterValue
	preset       string
	writable     bool
	enumerable   bool
	configurable bool
}

// registerFilterFlags adds --filter, --preset and the per-attribute flags to
// a cobra command.
func registerFilterFlags(cmd *cobra.Command, opts *filterOptions) {
	opts.filter = newFilterValue()

	f := cmd.Flags()
	f.Var(opts.filter, "filter", "descriptor filter as attr=bool pairs, e.g. writable=false,configurable=true")
	f.StringVar(&opts.preset, "preset", "", "named filter preset from the config file")
	f.BoolVar(&opts.writable, "writable", false, "require writable to equal this value")
	f.BoolVar(&opts.enumerable, "enumerable", false, "require enumerable to equal this value")
	f.BoolVar(&opts.configurable, "configurable", false, "require configurable to equal this value")
}

// resolve merges the preset, --filter and the attribute flags, in that
// order. Attribute flags only count when given explicitly.
func (o *filterOptions) resolve(ctx context.Context, cmd *cobra.Command) (propchain.Filter, error) {
	cfg := config.FromContext(ctx)
	filter := propchain.Filter{}

	if o.preset != "" {
		presets, err := config.LoadPresets(config.ConfigFileFromContext(ctx))
		if err != nil {
			return nil, &ExitError{Code: 2, Err: err}
		}

		pairs, err := presets.Lookup(o.preset)
		if err != nil {
			return nil, &ExitError{Code: 2, Err: err}
		}

		for attr, want := range pairs {
			filter[propchain.Attribute(attr)] = want
		}
	}

	if o.filter != nil {
		maps.Copy(filter, o.filter.filter)
	}

	flags := cmd.Flags()

	for attr, val := range map[propchain.Attribute]bool{
		propchain.Writable:     o.writable,
		propchain.Enumerable:   o.enumerable,
		propchain.Configurable: o.configurable,
	} {
		if flags.Changed(string(attr)) {
			filter[attr] = val
		}
	}

	if cfg.StrictFilter {
		if err := filter.Validate(); err != nil {
			return nil, &ExitError{Code: 2, Err: err}
		}
	}

	logging.FromContext(ctx).Debug("filter resolved", slog.String("filter", filter.String()))

	return filter, nil
}

// registerDebounceFlag adds the --debounce flag used by watch.
func registerDebounceFlag(cmd *cobra.Command, d *time.Duration) {
	cmd.Flags().DurationVar(d, "debounce", 300*time.Millisecond, "debounce interval for file changes")
}

// requireFlag reports a usage error when the named flag was not given.
func requireFlag(cmd *cobra.Command, name, reason string) error {
	if cmd.Flags().Changed(name) {
		return nil
	}

	return &ExitError{Code: 2, Err: fmt.Errorf("--%s is required %s", name, reason)}
}
