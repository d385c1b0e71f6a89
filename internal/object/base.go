package object

// BaseName is the name given to the object returned by [NewBase].
const BaseName = "Object.prototype"

// baseMethods lists the own properties of the default base prototype in the
// order a reference runtime enumerates them.
var baseMethods = []string{
	"constructor",
	"__defineGetter__",
	"__defineSetter__",
	"hasOwnProperty",
	"__lookupGetter__",
	"__lookupSetter__",
	"isPrototypeOf",
	"propertyIsEnumerable",
	"toString",
	"valueOf",
	"__proto__",
	"toLocaleString",
}

// NewBase returns a fresh default base prototype: a root object carrying the
// standard base methods, non-enumerable and configurable. __proto__ is an
// accessor and therefore has no writable attribute.
func NewBase() *Object {
	base := New(BaseName, nil)

	for _, name := range baseMethods {
		base.add(name, &Descriptor{
			Value:        "[native code]",
			Writable:     name != "__proto__",
			Configurable: true,
			Accessor:     name == "__proto__",
		})
	}

	return base
}

// BaseNames returns the own property names of a base prototype built by
// [NewBase], in enumeration order.
func BaseNames() []string {
	return append([]string(nil), baseMethods...)
}
