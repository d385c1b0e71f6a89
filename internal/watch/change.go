package watch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/protochain/internal/output"
)

// Change kinds reported by ChainDiff.
const (
	ChangeAdded        = "added"
	ChangeRemoved      = "removed"
	ChangeFlagsChanged = "flags-changed"
)

// Change describes one property that differs between two consecutive runs.
type Change struct {
	Kind string
	// Property is "object.name".
	Property string
	// Detail holds the flags, or "old -> new" for flag changes.
	Detail string
}

// ChainDiff compares the per-level breakdown of two runs. Results are
// sorted by property for stable output.
func ChainDiff(prev, curr []output.Level) []Change {
	prevMap := flattenLevels(prev)
	currMap := flattenLevels(curr)

	var changes []Change

	for key, flags := range prevMap {
		if _, ok := currMap[key]; !ok {
			changes = append(changes, Change{Kind: ChangeRemoved, Property: key, Detail: flags})
		}
	}

	for key, flags := range currMap {
		old, existed := prevMap[key]

		switch {
		case !existed:
			changes = append(changes, Change{Kind: ChangeAdded, Property: key, Detail: flags})
		case old != flags:
			changes = append(changes, Change{
				Kind:     ChangeFlagsChanged,
				Property: key,
				Detail:   fmt.Sprintf("%s -> %s", old, flags),
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Property != changes[j].Property {
			return changes[i].Property < changes[j].Property
		}

		return changes[i].Kind < changes[j].Kind
	})

	return changes
}

// ChainDiffSummary returns a human-readable one-line summary.
func ChainDiffSummary(changes []Change) string {
	var added, removed, changed int

	for _, c := range changes {
		switch c.Kind {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeFlagsChanged:
			changed++
		}
	}

	if added == 0 && removed == 0 && changed == 0 {
		return "no property changes"
	}

	parts := make([]string, 0, 3)

	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d property(s) added", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d property(s) removed", removed))
	}

	if changed > 0 {
		parts = append(parts, fmt.Sprintf("~%d flag change(s)", changed))
	}

	return strings.Join(parts, ", ")
}

// flattenLevels keys every property by "object.name". A name repeated on
// the same level cannot occur, so the map loses nothing.
func flattenLevels(levels []output.Level) map[string]string {
	result := make(map[string]string)

	for _, lvl := range levels {
		for _, p := range lvl.Properties {
			result[lvl.Object+"."+p.Name] = p.Flags
		}
	}

	return result
}
