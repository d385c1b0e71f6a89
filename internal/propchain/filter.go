package propchain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/protochain/internal/object"
)

// ErrUnknownAttribute is reported by [Filter.Validate] and [ParseFilter] for
// attribute names other than writable, enumerable and configurable.
var ErrUnknownAttribute = errors.New("unknown descriptor attribute")

// Attribute names a boolean descriptor attribute.
type Attribute string

// Supported filter attributes.
const (
	Writable     Attribute = object.AttrWritable
	Enumerable   Attribute = object.AttrEnumerable
	Configurable Attribute = object.AttrConfigurable
)

// Attributes lists the supported attributes in canonical order.
var Attributes = []Attribute{Writable, Enumerable, Configurable}

// Valid reports whether a is one of the supported attributes.
func (a Attribute) Valid() bool {
	switch a {
	case Writable, Enumerable, Configurable:
		return true
	default:
		return false
	}
}

// Filter maps descriptor attributes to the value a property must carry.
// A nil or empty Filter matches every property.
//
// An attribute the descriptor does not have never matches, whatever value
// is required. That covers unknown attribute names as well as writable on
// accessor properties.
type Filter map[Attribute]bool

// Matches reports whether d satisfies every pair in f.
func (f Filter) Matches(d object.Descriptor) bool {
	for attr, want := range f {
		got, ok := d.Attribute(string(attr))
		if !ok || got != want {
			return false
		}
	}

	return true
}

// Validate returns an error wrapping ErrUnknownAttribute when f uses an
// attribute outside [Attributes].
func (f Filter) Validate() error {
	var unknown []string

	for attr := range f {
		if !attr.Valid() {
			unknown = append(unknown, string(attr))
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)

	return fmt.Errorf("%w: %s (supported: writable, enumerable, configurable)",
		ErrUnknownAttribute, strings.Join(unknown, ", "))
}

// String renders f as comma-separated attr=value pairs in canonical order,
// with unknown attributes last.
func (f Filter) String() string {
	parts := make([]string, 0, len(f))

	for _, attr := range Attributes {
		if v, ok := f[attr]; ok {
			parts = append(parts, fmt.Sprintf("%s=%t", attr, v))
		}
	}

	var extra []string

	for attr, v := range f {
		if !attr.Valid() {
			extra = append(extra, fmt.Sprintf("%s=%t", attr, v))
		}
	}

	sort.Strings(extra)

	return strings.Join(append(parts, extra...), ",")
}

// ParseFilter parses "writable=false,configurable=true". Whitespace around
// items is ignored and an empty string yields an empty filter. Attribute
// names are validated.
func ParseFilter(s string) (Filter, error) {
	f, err := ParseFilterLenient(s)
	if err != nil {
		return nil, err
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// ParseFilterLenient is ParseFilter without attribute validation. Unknown
// attributes are kept and never match.
func ParseFilterLenient(s string) (Filter, error) {
	f := Filter{}

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		key, val, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("filter item %q: expected attribute=bool", item)
		}

		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("filter item %q: %w", item, err)
		}

		f[Attribute(strings.TrimSpace(key))] = b
	}

	return f, nil
}
