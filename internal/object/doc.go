// Package object models the structured values that protochain traverses.
//
// An [Object] owns an ordered table of own properties, each described by a
// [Descriptor], and an explicit link to its prototype. The chain ends at an
// object whose prototype is nil. Property attributes are plain data attached
// when the property is created, so comparing them is a structural operation
// rather than a reflective one.
package object
