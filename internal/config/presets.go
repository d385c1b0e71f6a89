package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	sigsyaml "sigs.k8s.io/yaml"
)

// knownAttributes are the descriptor attributes a preset may constrain.
var knownAttributes = map[string]bool{
	"writable":     true,
	"enumerable":   true,
	"configurable": true,
}

// presetNamePattern validates preset names.
// Must start with a letter and contain only letters, digits, and hyphens.
var presetNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// Presets holds named descriptor filters loaded from the config file
// (.protochain.yaml):
//
//	filters:
//	  mutable:
//	    writable: true
//	  hidden:
//	    enumerable: false
type Presets struct {
	Filters map[string]map[string]bool `json:"filters,omitempty"`
}

// ParsePresets parses the filters section from raw config file bytes.
// Other keys of the file are ignored.
func ParsePresets(data []byte) (*Presets, error) {
	var p Presets
	if err := sigsyaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing filter presets: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// LoadPresets reads presets from the config file at path. An empty path
// yields an empty set.
func LoadPresets(path string) (*Presets, error) {
	if path == "" {
		return &Presets{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the resolved config file
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	return ParsePresets(data)
}

// Validate checks preset names and attributes.
func (p *Presets) Validate() error {
	for _, name := range p.Names() {
		if !presetNamePattern.MatchString(name) {
			return fmt.Errorf("filters[%s]: invalid preset name (must match %s)", name, presetNamePattern.String())
		}

		for attr := range p.Filters[name] {
			if !knownAttributes[attr] {
				return fmt.Errorf("filters[%s]: unknown attribute %q (must be writable, enumerable, or configurable)", name, attr)
			}
		}
	}

	return nil
}

// Lookup returns the preset called name.
func (p *Presets) Lookup(name string) (map[string]bool, error) {
	f, ok := p.Filters[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter preset %q", name)
	}

	return f, nil
}

// Names returns the preset names in sorted order.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.Filters))
	for name := range p.Filters {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// IsEmpty returns true if no presets are defined.
func (p *Presets) IsEmpty() bool {
	return len(p.Filters) == 0
}
