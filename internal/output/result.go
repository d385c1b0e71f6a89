package output

import (
	"github.com/hupe1980/protochain/internal/maputil"
	"github.com/hupe1980/protochain/internal/object"
	"github.com/hupe1980/protochain/internal/propchain"
)

// Result is the renderable form of one traversal.
type Result struct {
	Object string `json:"object,omitempty"`
	Filter string `json:"filter,omitempty"`

	// Names holds the produced elements; nil entries are the absent marker.
	Names []*string `json:"names"`

	// Levels is the per-object breakdown, root-most first. Empty when the
	// target is absent.
	Levels []Level `json:"levels,omitempty"`
}

// Level is one object of the chain with the properties it contributed.
type Level struct {
	Object     string     `json:"object"`
	Properties []Property `json:"properties"`
}

// Property describes a contributed property.
type Property struct {
	Name       string            `json:"name"`
	Flags      string            `json:"flags"`
	Descriptor object.Descriptor `json:"descriptor"`
}

// NewResult builds a Result from the keys read off an iterator and the
// levels of the same traversal.
func NewResult(name string, filter propchain.Filter, keys []propchain.Key, levels []propchain.Level) *Result {
	r := &Result{
		Object: name,
		Filter: filter.String(),
		Names:  make([]*string, 0, len(keys)),
	}

	for _, k := range keys {
		if k.IsAbsent() {
			r.Names = append(r.Names, nil)
			continue
		}

		n := k.Name()
		r.Names = append(r.Names, &n)
	}

	for _, lvl := range levels {
		out := Level{Object: lvl.Object.Name(), Properties: make([]Property, 0, len(lvl.Names))}

		for _, n := range lvl.Names {
			d, _ := lvl.Object.OwnDescriptor(n)
			d.Value = maputil.CopyValue(d.Value)
			out.Properties = append(out.Properties, Property{Name: n, Flags: d.Flags(), Descriptor: d})
		}

		r.Levels = append(r.Levels, out)
	}

	return r
}

// Strings returns the names with the absent marker spelled "undefined".
func (r *Result) Strings() []string {
	out := make([]string, 0, len(r.Names))

	for _, n := range r.Names {
		if n == nil {
			out = append(out, propchain.Absent.String())
			continue
		}

		out = append(out, *n)
	}

	return out
}
