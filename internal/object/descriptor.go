package object

import "fmt"

// Attribute names understood by [Descriptor.Attribute].
const (
	AttrWritable     = "writable"
	AttrEnumerable   = "enumerable"
	AttrConfigurable = "configurable"
)

// Descriptor holds the attributes of a single own property.
type Descriptor struct {
	// Value is the data value. Unused for accessor properties.
	Value any `json:"value,omitempty"`

	Writable     bool `json:"writable"`
	Enumerable   bool `json:"enumerable"`
	Configurable bool `json:"configurable"`

	// Accessor marks a get/set property. Accessors carry no writable
	// attribute at all.
	Accessor bool `json:"accessor,omitempty"`
}

// Attribute reports the boolean value of the named attribute. The second
// result is false when the descriptor has no such attribute: unknown names,
// and writable on accessor properties.
func (d Descriptor) Attribute(name string) (bool, bool) {
	switch name {
	case AttrWritable:
		if d.Accessor {
			return false, false
		}

		return d.Writable, true
	case AttrEnumerable:
		return d.Enumerable, true
	case AttrConfigurable:
		return d.Configurable, true
	default:
		return false, false
	}
}

// Flags renders the attributes in a compact w/e/c form, e.g. "we-".
// Accessors show "a" in the writable slot.
func (d Descriptor) Flags() string {
	b := []byte("---")

	switch {
	case d.Accessor:
		b[0] = 'a'
	case d.Writable:
		b[0] = 'w'
	}

	if d.Enumerable {
		b[1] = 'e'
	}

	if d.Configurable {
		b[2] = 'c'
	}

	return string(b)
}

func (d Descriptor) String() string {
	if d.Accessor {
		return fmt.Sprintf("{accessor enumerable:%t configurable:%t}", d.Enumerable, d.Configurable)
	}

	return fmt.Sprintf("{value:%v writable:%t enumerable:%t configurable:%t}",
		d.Value, d.Writable, d.Enumerable, d.Configurable)
}

// PropertySpec is a partial descriptor used by [Object.DefineProperty].
// Nil attributes default to false on new properties and keep their previous
// value on existing ones.
type PropertySpec struct {
	Value    any
	HasValue bool

	Writable     *bool
	Enumerable   *bool
	Configurable *bool

	Accessor bool
}

// Bool returns a pointer to b, for use in [PropertySpec] literals.
func Bool(b bool) *bool { return &b }
