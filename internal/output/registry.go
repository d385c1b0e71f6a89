package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	sigsyaml "sigs.k8s.io/yaml"
)

// Built-in format names.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// RenderFunc writes r to w in one output format.
type RenderFunc func(w io.Writer, r *Result) error

// Registry maps format names to RenderFunc implementations.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]RenderFunc
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]RenderFunc),
	}
}

// Register adds a renderer under the given format name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.renderers[name] = fn
}

// Renderer returns the renderer for the given format, or an error if not found.
func (r *Registry) Renderer(name string) (RenderFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.availableLocked())
	}

	return fn, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Registry) formatsLocked() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry pre-populated with the built-in
// formats: text, json, yaml, table.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatText, RenderText)
	r.Register(FormatJSON, RenderJSON)
	r.Register(FormatYAML, RenderYAML)
	r.Register(FormatTable, RenderTable)

	return r
}

// Render writes res in the named format using the default registry.
func Render(w io.Writer, res *Result, format string) error {
	fn, err := DefaultRegistry().Renderer(format)
	if err != nil {
		return err
	}

	return fn(w, res)
}

// RenderText prints one name per line, the absent marker as "undefined".
func RenderText(w io.Writer, r *Result) error {
	for _, s := range r.Strings() {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}

	return nil
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}

// RenderYAML writes r as YAML.
func RenderYAML(w io.Writer, r *Result) error {
	data, err := sigsyaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("serializing YAML: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// RenderTable prints every contributed property with its level and flags.
func RenderTable(w io.Writer, r *Result) error {
	if len(r.Levels) == 0 {
		_, err := fmt.Fprintln(w, "(no object)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LEVEL\tOBJECT\tNAME\tFLAGS")

	for i, lvl := range r.Levels {
		for _, p := range lvl.Properties {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, lvl.Object, p.Name, p.Flags)
		}
	}

	return tw.Flush()
}
