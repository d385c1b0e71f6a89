// Package propchain enumerates the property names of an object together with
// everything it inherits through its prototype chain.
//
// Names are produced root-most level first: the properties of the topmost
// ancestor, then those of its descendant, down to the own properties of the
// target itself. A name defined at several levels appears once per level.
//
//	it := propchain.Iterate(obj, propchain.Filter{propchain.Writable: false})
//	for k := it.Next(); !k.IsAbsent(); k = it.Next() {
//	    fmt.Println(k.Name())
//	}
package propchain

import (
	"iter"

	"github.com/hupe1980/protochain/internal/object"
)

// Key is one element of a traversal. The zero Key is [Absent].
type Key struct {
	name  string
	valid bool
}

// Absent marks a missing target object and, after the last name, an
// exhausted iterator.
var Absent Key

// NameKey wraps a property name.
func NameKey(name string) Key { return Key{name: name, valid: true} }

// Name returns the property name, or "" for Absent.
func (k Key) Name() string { return k.name }

// IsAbsent reports whether k is the absent marker.
func (k Key) IsAbsent() bool { return !k.valid }

func (k Key) String() string {
	if !k.valid {
		return "undefined"
	}

	return k.name
}

// State is the cursor position of an [Iterator].
type State int

// Iterator states. There is no transition back to NotStarted.
const (
	NotStarted State = iota
	InProgress
	Exhausted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	default:
		return "exhausted"
	}
}

// Level holds the names one object contributes to a traversal.
type Level struct {
	Object *object.Object
	Names  []string
}

// Iterator is a single-pass cursor over a precomputed traversal.
// It is not safe for concurrent use; separate iterators over the same
// object are independent.
type Iterator struct {
	keys []Key
	pos  int
}

// Iterate walks obj's prototype chain and returns an iterator over the
// matching names. A nil obj produces a sequence holding only Absent.
// The chain is read once, here; obj is never modified.
func Iterate(obj *object.Object, filter Filter) *Iterator {
	if obj == nil {
		return &Iterator{keys: []Key{Absent}}
	}

	var keys []Key

	for _, lvl := range Levels(obj, filter) {
		for _, name := range lvl.Names {
			keys = append(keys, NameKey(name))
		}
	}

	return &Iterator{keys: keys}
}

// Next returns the next element, or Absent once the sequence is exhausted.
func (it *Iterator) Next() Key {
	if it.pos >= len(it.keys) {
		it.pos = len(it.keys) + 1
		return Absent
	}

	k := it.keys[it.pos]
	it.pos++

	return k
}

// All yields the remaining elements and stops. It shares the cursor with
// Next, so ranging twice yields nothing the second time.
func (it *Iterator) All() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for it.pos < len(it.keys) {
			k := it.keys[it.pos]
			it.pos++

			if !yield(k) {
				return
			}
		}

		it.pos = len(it.keys) + 1
	}
}

// State reports where the cursor is. An iterator that has handed out its
// last element stays InProgress until a further read observes the end.
func (it *Iterator) State() State {
	switch {
	case it.pos == 0:
		return NotStarted
	case it.pos > len(it.keys):
		return Exhausted
	default:
		return InProgress
	}
}

// Remaining returns the number of elements not yet read.
func (it *Iterator) Remaining() int {
	if it.pos >= len(it.keys) {
		return 0
	}

	return len(it.keys) - it.pos
}

// Levels returns the matching own names of every level of obj's chain,
// root-most level first. Levels contributing nothing are kept with an empty
// Names slice. A nil obj has no levels.
func Levels(obj *object.Object, filter Filter) []Level {
	var levels []Level

	for cur := obj; cur != nil; cur = cur.Prototype() {
		lvl := Level{Object: cur, Names: ownMatching(cur, filter)}
		levels = append([]Level{lvl}, levels...)
	}

	return levels
}

// Collect drains a fresh traversal into a slice.
func Collect(obj *object.Object, filter Filter) []Key {
	var keys []Key

	for k := range Iterate(obj, filter).All() {
		keys = append(keys, k)
	}

	return keys
}

// Names returns the property names of a traversal. A nil obj yields nil.
func Names(obj *object.Object, filter Filter) []string {
	if obj == nil {
		return nil
	}

	var names []string

	for _, lvl := range Levels(obj, filter) {
		names = append(names, lvl.Names...)
	}

	return names
}

func ownMatching(o *object.Object, filter Filter) []string {
	names := o.OwnPropertyNames()
	if len(filter) == 0 {
		return names
	}

	kept := names[:0]

	for _, name := range names {
		d, _ := o.OwnDescriptor(name)
		if filter.Matches(d) {
			kept = append(kept, name)
		}
	}

	return kept
}
