package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/protochain/internal/object"
	"github.com/hupe1980/protochain/internal/propchain"
)

func sampleResult(t *testing.T) *Result {
	t.Helper()

	root := object.New("root", nil).MustSet("a", 1)
	child := object.New("child", root)
	require.NoError(t, child.DefineProperty("e", object.PropertySpec{Value: 6, HasValue: true, Enumerable: object.Bool(true)}))

	filter := propchain.Filter{propchain.Enumerable: true}

	return NewResult("child", filter, propchain.Collect(child, filter), propchain.Levels(child, filter))
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

func TestNewResult(t *testing.T) {
	r := sampleResult(t)

	assert.Equal(t, "child", r.Object)
	assert.Equal(t, "enumerable=true", r.Filter)
	assert.Equal(t, []string{"a", "e"}, r.Strings())

	require.Len(t, r.Levels, 2)
	assert.Equal(t, "root", r.Levels[0].Object)
	assert.Equal(t, "wec", r.Levels[0].Properties[0].Flags)
	assert.Equal(t, "child", r.Levels[1].Object)
	assert.Equal(t, "-e-", r.Levels[1].Properties[0].Flags)
}

func TestNewResult_Absent(t *testing.T) {
	r := NewResult("", nil, propchain.Collect(nil, nil), nil)

	require.Len(t, r.Names, 1)
	assert.Nil(t, r.Names[0])
	assert.Equal(t, []string{"undefined"}, r.Strings())
	assert.Empty(t, r.Levels)
}

// ---------------------------------------------------------------------------
// Renderers
// ---------------------------------------------------------------------------

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(t), FormatText))
	assert.Equal(t, "a\ne\n", buf.String())
}

func TestRenderText_Absent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, NewResult("", nil, []propchain.Key{propchain.Absent}, nil), FormatText))
	assert.Equal(t, "undefined\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(t), FormatJSON))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "child", parsed["object"])
	assert.Equal(t, []interface{}{"a", "e"}, parsed["names"])
}

func TestRenderJSON_AbsentIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, NewResult("", nil, []propchain.Key{propchain.Absent}, nil)))
	assert.Contains(t, buf.String(), `"names": [
    null
  ]`)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(t), FormatYAML))

	var parsed map[string]interface{}
	require.NoError(t, sigsyaml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, []interface{}{"a", "e"}, parsed["names"])
	assert.Equal(t, "enumerable=true", parsed["filter"])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(t), FormatTable))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "LEVEL")
	assert.Regexp(t, `^0\s+root\s+a\s+wec$`, lines[1])
	assert.Regexp(t, `^1\s+child\s+e\s+-e-$`, lines[2])
}

func TestRenderTable_NoObject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, &Result{}))
	assert.Equal(t, "(no object)\n", buf.String())
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(io.Discard, &Result{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	assert.Contains(t, err.Error(), "json, table, text, yaml")
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry_RegisterAndOverwrite(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "none", r.AvailableFormats())

	r.Register("csv", func(w io.Writer, _ *Result) error { _, err := io.WriteString(w, "old"); return err })
	r.Register("csv", func(w io.Writer, _ *Result) error { _, err := io.WriteString(w, "new"); return err })

	fn, err := r.Renderer("csv")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fn(&buf, &Result{}))
	assert.Equal(t, "new", buf.String())
	assert.Equal(t, []string{"csv"}, r.Formats())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{FormatJSON, FormatTable, FormatText, FormatYAML}, DefaultRegistry().Formats())
}

// ---------------------------------------------------------------------------
// Writers
// ---------------------------------------------------------------------------

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter("", &buf, nil)
	assert.IsType(t, &StreamWriter{}, w)
	require.NoError(t, w.Write([]byte("x")))
	assert.Equal(t, "x", buf.String())

	assert.IsType(t, &FileWriter{}, NewWriter("/tmp/out.txt", &buf, nil))
}

func TestStreamWriter_NilDefault(t *testing.T) {
	assert.NotNil(t, NewStreamWriter(nil))
}

func TestFileWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "names.txt")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("a\nb\n")))
	require.NoError(t, w.Write([]byte("c\n")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "c\n", string(got))
	assert.Equal(t, path, w.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.txt")

	require.NoError(t, NewFileWriter(path, WithPermissions(0o600)).Write([]byte("x")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
