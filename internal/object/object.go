package object

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Sentinel errors returned by property and prototype operations.
var (
	ErrNotConfigurable = errors.New("property is not configurable")
	ErrNotWritable     = errors.New("property is not writable")
	ErrPrototypeCycle  = errors.New("prototype chain would form a cycle")
	ErrEmptyName       = errors.New("property name must not be empty")
)

// maxArrayIndex is the largest key treated as an integer index (2^32 - 2).
const maxArrayIndex = 4294967294

// Object is a named value with ordered own properties and a prototype link.
// Objects are not safe for concurrent mutation; concurrent reads are fine.
type Object struct {
	name      string
	prototype *Object
	keys      []string
	props     map[string]*Descriptor
}

// New creates an empty object whose prototype is proto. A nil proto makes
// the object a chain root.
func New(name string, proto *Object) *Object {
	return &Object{
		name:      name,
		prototype: proto,
		props:     make(map[string]*Descriptor),
	}
}

// Name returns the label the object was created with.
func (o *Object) Name() string { return o.name }

// Prototype returns the parent link, or nil at the root.
func (o *Object) Prototype() *Object { return o.prototype }

// SetPrototype replaces the parent link. It refuses links that would make o
// reachable from its own prototype chain.
func (o *Object) SetPrototype(proto *Object) error {
	for p := proto; p != nil; p = p.prototype {
		if p == o {
			return fmt.Errorf("setting prototype of %q to %q: %w", o.name, proto.name, ErrPrototypeCycle)
		}
	}

	o.prototype = proto

	return nil
}

// Chain returns o followed by each ancestor, stopping before the nil root.
func (o *Object) Chain() []*Object {
	var levels []*Object

	for cur := o; cur != nil; cur = cur.prototype {
		levels = append(levels, cur)
	}

	return levels
}

// Len returns the number of own properties.
func (o *Object) Len() int { return len(o.keys) }

// HasOwn reports whether name is an own property of o.
func (o *Object) HasOwn(name string) bool {
	_, ok := o.props[name]
	return ok
}

// OwnDescriptor returns a copy of the descriptor of an own property.
func (o *Object) OwnDescriptor(name string) (Descriptor, bool) {
	d, ok := o.props[name]
	if !ok {
		return Descriptor{}, false
	}

	return *d, true
}

// Lookup finds name on o or the nearest ancestor defining it.
func (o *Object) Lookup(name string) (Descriptor, *Object, bool) {
	for cur := o; cur != nil; cur = cur.prototype {
		if d, ok := cur.props[name]; ok {
			return *d, cur, true
		}
	}

	return Descriptor{}, nil, false
}

// OwnPropertyNames returns the own property names of o: integer-like keys in
// ascending numeric order, then every other key in insertion order.
func (o *Object) OwnPropertyNames() []string {
	type index struct {
		n   uint64
		key string
	}

	var (
		indices []index
		strs    []string
	)

	for _, k := range o.keys {
		if n, ok := arrayIndex(k); ok {
			indices = append(indices, index{n: n, key: k})
		} else {
			strs = append(strs, k)
		}
	}

	sort.Slice(indices, func(i, j int) bool { return indices[i].n < indices[j].n })

	names := make([]string, 0, len(o.keys))
	for _, idx := range indices {
		names = append(names, idx.key)
	}

	return append(names, strs...)
}

// Set assigns value to name the way a plain assignment does: a new property
// is writable, enumerable and configurable. Assigning over a non-writable
// own or inherited property fails with ErrNotWritable.
func (o *Object) Set(name string, value any) error {
	if name == "" {
		return ErrEmptyName
	}

	if d, ok := o.props[name]; ok {
		if d.Accessor || !d.Writable {
			return fmt.Errorf("assigning %q on %q: %w", name, o.name, ErrNotWritable)
		}

		d.Value = value

		return nil
	}

	if d, owner, ok := o.prototype.lookupInherited(name); ok && (d.Accessor || !d.Writable) {
		return fmt.Errorf("assigning %q on %q (inherited from %q): %w", name, o.name, owner.name, ErrNotWritable)
	}

	o.add(name, &Descriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})

	return nil
}

// MustSet is Set for object literals built in code; it panics on error.
func (o *Object) MustSet(name string, value any) *Object {
	if err := o.Set(name, value); err != nil {
		panic(err)
	}

	return o
}

// DefineProperty creates or redefines an own property from spec. Changes to
// a non-configurable property are limited to what a define operation allows:
// lowering writable, or rewriting the value of a still-writable data property.
func (o *Object) DefineProperty(name string, spec PropertySpec) error {
	if name == "" {
		return ErrEmptyName
	}

	cur, ok := o.props[name]
	if !ok {
		d := &Descriptor{Accessor: spec.Accessor}
		if !spec.Accessor {
			d.Value = spec.Value
			d.Writable = deref(spec.Writable, false)
		}

		d.Enumerable = deref(spec.Enumerable, false)
		d.Configurable = deref(spec.Configurable, false)
		o.add(name, d)

		return nil
	}

	if err := checkRedefine(cur, spec); err != nil {
		return fmt.Errorf("redefining %q on %q: %w", name, o.name, err)
	}

	next := *cur

	if spec.Accessor != cur.Accessor {
		next = Descriptor{Accessor: spec.Accessor, Enumerable: cur.Enumerable, Configurable: cur.Configurable}
	}

	if !next.Accessor {
		if spec.HasValue {
			next.Value = spec.Value
		}

		next.Writable = deref(spec.Writable, next.Writable)
	}

	next.Enumerable = deref(spec.Enumerable, next.Enumerable)
	next.Configurable = deref(spec.Configurable, next.Configurable)
	*cur = next

	return nil
}

// DeleteProperty removes an own property. Non-configurable properties stay.
func (o *Object) DeleteProperty(name string) error {
	d, ok := o.props[name]
	if !ok {
		return nil
	}

	if !d.Configurable {
		return fmt.Errorf("deleting %q on %q: %w", name, o.name, ErrNotConfigurable)
	}

	delete(o.props, name)

	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}

	return nil
}

func (o *Object) add(name string, d *Descriptor) {
	o.keys = append(o.keys, name)
	o.props[name] = d
}

func (o *Object) lookupInherited(name string) (Descriptor, *Object, bool) {
	if o == nil {
		return Descriptor{}, nil, false
	}

	return o.Lookup(name)
}

func checkRedefine(cur *Descriptor, spec PropertySpec) error {
	if cur.Configurable {
		return nil
	}

	if spec.Configurable != nil && *spec.Configurable {
		return ErrNotConfigurable
	}

	if spec.Enumerable != nil && *spec.Enumerable != cur.Enumerable {
		return ErrNotConfigurable
	}

	if spec.Accessor != cur.Accessor {
		return ErrNotConfigurable
	}

	if cur.Accessor || cur.Writable {
		return nil
	}

	if spec.Writable != nil && *spec.Writable {
		return ErrNotWritable
	}

	if spec.HasValue && !reflect.DeepEqual(spec.Value, cur.Value) {
		return ErrNotWritable
	}

	return nil
}

func deref(p *bool, def bool) bool {
	if p == nil {
		return def
	}

	return *p
}

// arrayIndex reports whether key is a canonical array index: decimal digits,
// no leading zero, at most maxArrayIndex.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}

	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n > maxArrayIndex {
		return 0, false
	}

	return n, true
}
