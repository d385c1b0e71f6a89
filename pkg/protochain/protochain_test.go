package protochain_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/protochain/pkg/protochain"
)

func TestIterateProperties_Chain(t *testing.T) {
	obj := protochain.NewObject("obj", nil)
	obj.MustSet("a", 1).MustSet("b", 2).MustSet("c", 3)

	p1 := protochain.NewObject("p1", obj)
	p1.MustSet("c", 5)

	it := protochain.IterateProperties(p1, nil)

	var got []string
	for k := range it.All() {
		got = append(got, k.Name())
	}

	assert.Equal(t, []string{"a", "b", "c", "c"}, got)
	assert.Equal(t, protochain.Absent, it.Next())
}

func TestIterateProperties_Nil(t *testing.T) {
	it := protochain.IterateProperties(nil, nil)
	assert.True(t, it.Next().IsAbsent())
	assert.Nil(t, protochain.Names(nil, nil))
}

func TestNames_WithBase(t *testing.T) {
	o := protochain.NewObject("o", protochain.NewBase())
	require.NoError(t, o.DefineProperty("hidden", protochain.PropertySpec{Value: 1, HasValue: true}))

	names := protochain.Names(o, protochain.Filter{protochain.Enumerable: false, protochain.Writable: false})
	assert.Equal(t, []string{"hidden"}, names)
}

func TestParseFilter(t *testing.T) {
	f, err := protochain.ParseFilter("writable=false")
	require.NoError(t, err)
	assert.Equal(t, protochain.Filter{protochain.Writable: false}, f)

	_, err = protochain.ParseFilter("hidden=true")
	assert.ErrorIs(t, err, protochain.ErrUnknownAttribute)
}

func TestTraverse(t *testing.T) {
	keys, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "p2",
		protochain.WithFilter(protochain.Filter{protochain.Writable: false, protochain.Configurable: false}))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "e", keys[0].Name())
}

func TestTraverse_NoObject(t *testing.T) {
	keys, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "")
	require.NoError(t, err)
	assert.Equal(t, []protochain.Key{protochain.Absent}, keys)
}

func TestTraverse_UnknownObject(t *testing.T) {
	_, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "ghost")
	require.Error(t, err)
	assert.True(t, protochain.IsUnknownObject(err))
}

func TestTraverse_StrictFilter(t *testing.T) {
	bad := protochain.Filter{"value": true}

	_, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "p2",
		protochain.WithFilter(bad), protochain.WithStrictFilter())
	assert.ErrorIs(t, err, protochain.ErrUnknownAttribute)

	keys, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "p2", protochain.WithFilter(bad))
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestTraverse_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := protochain.Traverse(context.Background(), "testdata/chain.yaml", "dict", protochain.WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "traversal complete")
}

func TestLoadGraph_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := protochain.LoadGraph(ctx, "testdata/chain.yaml")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseGraph(t *testing.T) {
	g, err := protochain.ParseGraph([]byte("apiVersion: protochain/v1\nobjects:\n  - name: solo\n    prototype: null\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, g.Names())
}
