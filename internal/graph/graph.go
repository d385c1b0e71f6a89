// Package graph loads object graphs from YAML files.
//
// A graph file lists named objects, their prototype links and their own
// properties:
//
//	apiVersion: protochain/v1
//	version: 1.0.0
//	objects:
//	  - name: obj
//	    properties:
//	      - {name: a, value: 1}
//	  - name: p1
//	    prototype: obj
//	    properties:
//	      - {name: c, value: 5, writable: true, enumerable: true}
//
// Objects without a prototype key inherit from the shared base prototype
// (also reachable as "Object.prototype"); "prototype: null" makes a chain
// root. A file may hold several YAML documents; later documents add
// properties to objects declared earlier.
package graph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/hupe1980/protochain/internal/maputil"
	"github.com/hupe1980/protochain/internal/object"
	"github.com/hupe1980/protochain/internal/version"
	"github.com/hupe1980/protochain/internal/yamlutil"
)

// APIVersion is the only accepted apiVersion value.
const APIVersion = version.GraphAPIVersion

// SupportedVersions is the semver constraint graph documents must satisfy.
const SupportedVersions = version.GraphSchema

// Errors reported by Parse and Graph.Object.
var (
	ErrUnsupportedVersion = errors.New("unsupported graph version")
	ErrUnknownObject      = errors.New("unknown object")
	ErrEmptyGraph         = errors.New("graph file contains no documents")
)

// Graph is a resolved object graph.
type Graph struct {
	base    *object.Object
	objects map[string]*object.Object
	order   []string
}

// Load reads and parses the graph file at path.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading graph %q: %w", path, err)
	}

	return g, nil
}

// Parse decodes every document in data and builds the graph. Validation
// problems are collected and returned together.
func Parse(data []byte) (*Graph, error) {
	docs := yamlutil.SplitDocuments(data)
	if len(docs) == 0 {
		return nil, ErrEmptyGraph
	}

	var specs []ObjectSpec

	for i, raw := range docs {
		doc, err := decodeDocument(raw.Data)
		if err != nil {
			return nil, fmt.Errorf("document %d (line %d): %w", i, raw.Line, err)
		}

		for j := range doc.Objects {
			doc.Objects[j].Line += raw.Line - 1
		}

		specs = merge(specs, doc.Objects)
	}

	return build(specs)
}

// Base returns the shared base prototype of the graph.
func (g *Graph) Base() *object.Object { return g.base }

// Object returns the object declared under name. "Object.prototype" returns
// the base prototype.
func (g *Graph) Object(name string) (*object.Object, error) {
	if name == object.BaseName {
		return g.base, nil
	}

	o, ok := g.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownObject, name, g.order)
	}

	return o, nil
}

// Names returns the declared object names in declaration order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

func decodeDocument(raw []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	if doc.APIVersion != APIVersion {
		return nil, fmt.Errorf("%w: apiVersion %q, expected %q", ErrUnsupportedVersion, doc.APIVersion, APIVersion)
	}

	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	return &doc, nil
}

// checkVersion validates the optional schema version against
// SupportedVersions.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}

	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, v, err)
	}

	if !c.Check(ver) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, ver, SupportedVersions)
	}

	return nil
}

// merge folds the objects of a later document into specs. Objects seen
// before gain the new properties; a prototype given later wins.
func merge(specs, next []ObjectSpec) []ObjectSpec {
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.Name] = i
	}

	// Duplicates inside one document are kept so build can report them.
	seenHere := sets.New[string]()

	for _, s := range next {
		i, ok := index[s.Name]
		if !ok || seenHere.Has(s.Name) {
			specs = append(specs, s)
			seenHere.Insert(s.Name)

			continue
		}

		seenHere.Insert(s.Name)

		prev := &specs[i]
		prev.Properties = append(prev.Properties, s.Properties...)

		if s.Prototype != "" || s.NullPrototype {
			prev.Prototype = s.Prototype
			prev.NullPrototype = s.NullPrototype
		}
	}

	return specs
}

func build(specs []ObjectSpec) (*Graph, error) {
	g := &Graph{
		base:    object.NewBase(),
		objects: make(map[string]*object.Object, len(specs)),
	}

	root := field.NewPath("objects")

	var errs field.ErrorList

	names := sets.New[string]()
	valid := make([]ObjectSpec, 0, len(specs))

	for i, s := range specs {
		p := root.Index(i).Child("name")

		switch {
		case s.Name == "":
			errs = append(errs, field.Required(p, fmt.Sprintf("object name is required (line %d)", s.Line)))
		case s.Name == object.BaseName:
			errs = append(errs, field.Invalid(p, s.Name, "name is reserved for the base prototype"))
		case names.Has(s.Name):
			errs = append(errs, field.Duplicate(p, s.Name))
		default:
			names.Insert(s.Name)
			g.objects[s.Name] = object.New(s.Name, nil)
			g.order = append(g.order, s.Name)
			valid = append(valid, s)
		}
	}

	for _, s := range valid {
		errs = append(errs, g.link(root.Key(s.Name).Child("prototype"), s)...)
	}

	for _, s := range byDepth(g, valid) {
		errs = append(errs, g.define(root.Key(s.Name).Child("properties"), s)...)
	}

	if len(errs) > 0 {
		return nil, errs.ToAggregate()
	}

	return g, nil
}

func (g *Graph) link(p *field.Path, s ObjectSpec) field.ErrorList {
	o := g.objects[s.Name]

	if s.NullPrototype {
		return nil
	}

	proto := g.base

	if s.Prototype != "" && s.Prototype != object.BaseName {
		var ok bool

		proto, ok = g.objects[s.Prototype]
		if !ok {
			return field.ErrorList{field.NotFound(p, s.Prototype)}
		}
	}

	if err := o.SetPrototype(proto); err != nil {
		return field.ErrorList{field.Invalid(p, s.Prototype, err.Error())}
	}

	return nil
}

func (g *Graph) define(p *field.Path, s ObjectSpec) field.ErrorList {
	o := g.objects[s.Name]

	var errs field.ErrorList

	for i, prop := range s.Properties {
		pp := p.Index(i)

		if prop.Name == "" {
			errs = append(errs, field.Required(pp.Child("name"), "property name is required"))
			continue
		}

		var err error

		if prop.IsAssignment() {
			err = o.Set(prop.Name, maputil.CopyValue(prop.Value))
		} else {
			err = o.DefineProperty(prop.Name, object.PropertySpec{
				Value:        maputil.CopyValue(prop.Value),
				HasValue:     !prop.Accessor,
				Writable:     prop.Writable,
				Enumerable:   prop.Enumerable,
				Configurable: prop.Configurable,
				Accessor:     prop.Accessor,
			})
		}

		if err != nil {
			errs = append(errs, field.Invalid(pp, prop.Name, err.Error()))
		}
	}

	return errs
}

// byDepth orders specs so that every object is populated after its
// ancestors; assignment checks look at inherited attributes.
func byDepth(g *Graph, specs []ObjectSpec) []ObjectSpec {
	out := append([]ObjectSpec(nil), specs...)

	sort.SliceStable(out, func(i, j int) bool {
		return len(g.objects[out[i].Name].Chain()) < len(g.objects[out[j].Name].Chain())
	})

	return out
}
