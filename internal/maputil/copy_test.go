package maputil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/protochain/internal/maputil"
)

func TestDeepCopyMap(t *testing.T) {
	src := map[string]any{
		"a": "hello",
		"b": 42,
		"c": map[string]any{
			"d": "nested",
			"e": []any{"x", "y"},
		},
	}

	dst := maputil.DeepCopyMap(src)
	assert.Equal(t, src, dst)

	nested := dst["c"].(map[string]any)
	nested["d"] = "modified"
	nested["e"].([]any)[0] = "z"

	assert.Equal(t, "nested", src["c"].(map[string]any)["d"])
	assert.Equal(t, "x", src["c"].(map[string]any)["e"].([]any)[0])
}

func TestDeepCopyMap_Nil(t *testing.T) {
	assert.Nil(t, maputil.DeepCopyMap(nil))
}

func TestDeepCopySlice_Nil(t *testing.T) {
	assert.Nil(t, maputil.DeepCopySlice(nil))
}

func TestCopyValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"scalar", 3.5},
		{"string", "s"},
		{"slice", []any{1, []any{2}}},
		{"map", map[string]any{"k": map[string]any{"v": true}}},
		{"non-string keys", map[any]any{1: "one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, maputil.CopyValue(tt.in))
		})
	}
}

func TestCopyValue_Independent(t *testing.T) {
	src := map[any]any{1: []any{"a"}}

	dst := maputil.CopyValue(src).(map[any]any)
	dst[1].([]any)[0] = "b"

	assert.Equal(t, "a", src[1].([]any)[0])
}
