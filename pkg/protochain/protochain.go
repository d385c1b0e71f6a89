// Package protochain provides a public Go API for building objects with
// explicit prototype chains and listing the property names they see.
//
// Basic usage:
//
//	base := protochain.NewBase()
//	obj := protochain.NewObject("obj", base)
//	obj.MustSet("a", 1)
//
//	for key := range protochain.IterateProperties(obj, nil).All() {
//	    fmt.Println(key)
//	}
//
// Graph files:
//
//	names, err := protochain.Traverse(ctx, "graph.yaml", "p2",
//	    protochain.WithFilter(protochain.Filter{protochain.Writable: false}),
//	    protochain.WithStrictFilter(),
//	)
package protochain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/protochain/internal/graph"
	"github.com/hupe1980/protochain/internal/logging"
	"github.com/hupe1980/protochain/internal/object"
	"github.com/hupe1980/protochain/internal/propchain"
)

// Object model.
type (
	Object       = object.Object
	Descriptor   = object.Descriptor
	PropertySpec = object.PropertySpec
)

// Traversal.
type (
	Filter    = propchain.Filter
	Attribute = propchain.Attribute
	Key       = propchain.Key
	Iterator  = propchain.Iterator
	Level     = propchain.Level
	State     = propchain.State
)

// Graph is an object graph loaded from a YAML graph file.
type Graph = graph.Graph

// Filter attributes.
const (
	Writable     = propchain.Writable
	Enumerable   = propchain.Enumerable
	Configurable = propchain.Configurable
)

// Absent is the marker produced for a missing target and after exhaustion.
var Absent = propchain.Absent

// Errors re-exported for errors.Is checks.
var (
	ErrUnknownAttribute = propchain.ErrUnknownAttribute
	ErrUnknownObject    = graph.ErrUnknownObject
	ErrNotConfigurable  = object.ErrNotConfigurable
	ErrNotWritable      = object.ErrNotWritable
	ErrPrototypeCycle   = object.ErrPrototypeCycle
)

// NewObject creates an empty object with the given prototype; nil means no
// prototype.
func NewObject(name string, proto *Object) *Object { return object.New(name, proto) }

// NewBase creates a base prototype carrying the standard base-object names.
func NewBase() *Object { return object.NewBase() }

// IterateProperties returns an iterator over the property names of obj and
// its prototypes, root-most level first. A nil obj yields only Absent.
func IterateProperties(obj *Object, filter Filter) *Iterator {
	return propchain.Iterate(obj, filter)
}

// Names drains IterateProperties into a slice. A nil obj yields nil.
func Names(obj *Object, filter Filter) []string {
	return propchain.Names(obj, filter)
}

// ParseFilter parses "writable=false,configurable=true".
func ParseFilter(s string) (Filter, error) { return propchain.ParseFilter(s) }

// Option configures graph-based traversals.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	filter Filter
	strict bool
	logger *slog.Logger
}

// WithFilter sets the descriptor filter.
func WithFilter(f Filter) Option { return func(o *options) { o.filter = f } }

// WithStrictFilter rejects filters naming unknown attributes instead of
// letting them silently never match.
func WithStrictFilter() Option { return func(o *options) { o.strict = true } }

// WithLogger sets a logger for diagnostics. By default nothing is logged.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	return o
}

// LoadGraph reads and builds the graph file at path.
func LoadGraph(ctx context.Context, path string, opts ...Option) (*Graph, error) {
	o := newOptions(opts)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := graph.Load(path)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("graph loaded", slog.String("graph", path), slog.Int("objects", len(g.Names())))

	return g, nil
}

// ParseGraph builds a graph from YAML bytes.
func ParseGraph(data []byte) (*Graph, error) {
	return graph.Parse(data)
}

// Traverse loads the graph at path and returns the keys produced for the
// named object. An empty name traverses no object and returns [Absent].
func Traverse(ctx context.Context, path, name string, opts ...Option) ([]Key, error) {
	o := newOptions(opts)

	if o.strict {
		if err := o.filter.Validate(); err != nil {
			return nil, err
		}
	}

	g, err := LoadGraph(ctx, path, opts...)
	if err != nil {
		return nil, err
	}

	var target *Object

	if name != "" {
		target, err = g.Object(name)
		if err != nil {
			return nil, fmt.Errorf("resolving object: %w", err)
		}
	}

	keys := propchain.Collect(target, o.filter)

	o.logger.Debug("traversal complete",
		slog.String("object", name),
		slog.String("filter", o.filter.String()),
		slog.Int("names", len(keys)),
	)

	return keys, nil
}

// IsUnknownObject reports whether err was caused by a missing object name.
func IsUnknownObject(err error) bool { return errors.Is(err, ErrUnknownObject) }
