// Package maputil deep-copies the loosely typed values decoded from graph
// files, so property values never alias the decoder's data or each other.
package maputil

// CopyValue returns a deep copy of v. Maps and slices produced by a YAML or
// JSON decoder are copied recursively; any other value is returned as is.
func CopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return DeepCopyMap(val)
	case map[any]any:
		dst := make(map[any]any, len(val))
		for k, e := range val {
			dst[k] = CopyValue(e)
		}

		return dst
	case []any:
		return DeepCopySlice(val)
	default:
		return v
	}
}

// DeepCopyMap performs a deep copy of a map[string]any.
func DeepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))

	for k, v := range src {
		dst[k] = CopyValue(v)
	}

	return dst
}

// DeepCopySlice performs a deep copy of a []any.
func DeepCopySlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))

	for i, v := range src {
		dst[i] = CopyValue(v)
	}

	return dst
}
