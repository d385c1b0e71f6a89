package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is one YAML document of a graph file.
type Document struct {
	APIVersion string       `yaml:"apiVersion"`
	Version    string       `yaml:"version"`
	Objects    []ObjectSpec `yaml:"objects"`
}

// ObjectSpec declares one object of the graph.
type ObjectSpec struct {
	Name string `yaml:"name"`

	// Prototype names the parent object. Empty means the shared base
	// prototype unless NullPrototype is set.
	Prototype string `yaml:"prototype"`

	// NullPrototype is set when the document says "prototype: null".
	NullPrototype bool `yaml:"-"`

	Properties []PropertySpec `yaml:"properties"`

	// Line is the source line of the object, for diagnostics.
	Line int `yaml:"-"`
}

// UnmarshalYAML decodes an object entry. It is needed because a plain
// decode cannot tell "prototype: null" from a missing key.
func (s *ObjectSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: object entry must be a mapping", node.Line)
	}

	type plain ObjectSpec

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "prototype" && node.Content[i+1].ShortTag() == "!!null" {
			p.NullPrototype = true
		}
	}

	p.Line = node.Line
	*s = ObjectSpec(p)

	return nil
}

// PropertySpec declares one own property. When none of the attribute keys
// is present the property is created by plain assignment (all attributes
// true); otherwise it is an explicit definition and missing attributes are
// false.
type PropertySpec struct {
	Name         string `yaml:"name"`
	Value        any    `yaml:"value"`
	Writable     *bool  `yaml:"writable"`
	Enumerable   *bool  `yaml:"enumerable"`
	Configurable *bool  `yaml:"configurable"`
	Accessor     bool   `yaml:"accessor"`
}

// IsAssignment reports whether the property uses plain assignment.
func (p PropertySpec) IsAssignment() bool {
	return p.Writable == nil && p.Enumerable == nil && p.Configurable == nil && !p.Accessor
}
