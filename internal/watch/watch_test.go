package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/protochain/internal/output"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("graph.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "graph.yaml", lastPath.Load())
}

func TestDebouncer_MultipleEventsCoalesced(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(100*time.Millisecond, func(_ string) {
		callCount.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("graph.yaml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_LastEventWins(t *testing.T) {
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("first.yaml")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("second.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "second.yaml", lastPath.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(_ string) {
		callCount.Add(1)
	})

	d.Trigger("graph.yaml")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

func TestDebouncer_RecoversFromPanic(t *testing.T) {
	var calls atomic.Int32

	d := NewDebouncer(10*time.Millisecond, func(_ string) {
		calls.Add(1)
		panic("boom")
	})
	defer d.Stop()

	d.Trigger("graph.yaml")
	time.Sleep(60 * time.Millisecond)

	d.Trigger("graph.yaml")
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(2), calls.Load())
}

// ---------------------------------------------------------------------------
// ChainDiff
// ---------------------------------------------------------------------------

func level(object string, props ...string) output.Level {
	lvl := output.Level{Object: object}

	for i := 0; i+1 < len(props); i += 2 {
		lvl.Properties = append(lvl.Properties, output.Property{Name: props[i], Flags: props[i+1]})
	}

	return lvl
}

func TestChainDiff_NoChanges(t *testing.T) {
	levels := []output.Level{level("obj", "a", "wec", "b", "wec")}
	assert.Empty(t, ChainDiff(levels, levels))
}

func TestChainDiff_AddedRemovedChanged(t *testing.T) {
	prev := []output.Level{
		level("obj", "a", "wec", "b", "wec"),
		level("p1", "c", "we-"),
	}
	curr := []output.Level{
		level("obj", "a", "wec"),
		level("p1", "c", "-e-", "d", "---"),
	}

	changes := ChainDiff(prev, curr)
	require.Len(t, changes, 3)

	assert.Equal(t, Change{Kind: ChangeRemoved, Property: "obj.b", Detail: "wec"}, changes[0])
	assert.Equal(t, Change{Kind: ChangeFlagsChanged, Property: "p1.c", Detail: "we- -> -e-"}, changes[1])
	assert.Equal(t, Change{Kind: ChangeAdded, Property: "p1.d", Detail: "---"}, changes[2])
}

func TestChainDiff_ShadowedNamesAreDistinct(t *testing.T) {
	prev := []output.Level{level("obj", "c", "wec")}
	curr := []output.Level{level("obj", "c", "wec"), level("p1", "c", "we-")}

	changes := ChainDiff(prev, curr)
	require.Len(t, changes, 1)
	assert.Equal(t, "p1.c", changes[0].Property)
}

func TestChainDiffSummary(t *testing.T) {
	tests := []struct {
		name    string
		changes []Change
		want    string
	}{
		{"no changes", nil, "no property changes"},
		{"added only", []Change{{Kind: ChangeAdded}, {Kind: ChangeAdded}}, "+2 property(s) added"},
		{
			"mixed",
			[]Change{{Kind: ChangeAdded}, {Kind: ChangeRemoved}, {Kind: ChangeFlagsChanged}},
			"+1 property(s) added, -1 property(s) removed, ~1 flag change(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChainDiffSummary(tt.changes))
		})
	}
}

// ---------------------------------------------------------------------------
// isRelevant / addFiles
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "graph.yaml")
	targets := map[string]struct{}{target: {}}

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"write", target, fsnotify.Write, true},
		{"create", target, fsnotify.Create, true},
		{"remove", target, fsnotify.Remove, true},
		{"rename", target, fsnotify.Rename, true},
		{"other file", filepath.Join(dir, "other.yaml"), fsnotify.Write, false},
		{"swap file", target + ".swp", fsnotify.Write, false},
		{"zero op", target, 0, false},
		{"chmod only", target, fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevant(fsnotify.Event{Name: tt.path, Op: tt.op}, targets))
		})
	}
}

func TestAddFiles_WatchesDirectoriesOnce(t *testing.T) {
	dir := t.TempDir()

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	targets, err := addFiles(watcher, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
	})
	require.NoError(t, err)

	assert.Len(t, targets, 2)
	assert.Equal(t, []string{dir}, watcher.WatchList())
}

func TestAddFiles_MissingDirectory(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	_, err = addFiles(watcher, []string{"/nonexistent/dir/12345/graph.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching directory")
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func startWatch(t *testing.T, ctx context.Context, opts Options, fn RunFunc) <-chan error {
	t.Helper()

	done := make(chan error, 1)

	go func() { done <- Run(ctx, opts, fn) }()

	return done
}

func TestRun_NoFiles(t *testing.T) {
	err := Run(context.Background(), Options{}, func(context.Context) (*RunResult, error) {
		return &RunResult{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files")
}

func TestRun_GracefulShutdown(t *testing.T) {
	file := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(file, []byte("apiVersion: protochain/v1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.Files = []string{file}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := startWatch(t, ctx, opts, func(context.Context) (*RunResult, error) {
		runCount.Add(1)
		return &RunResult{Count: 1}, nil
	})

	time.Sleep(200 * time.Millisecond)
	assert.GreaterOrEqual(t, runCount.Load(), int32(1))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_FileChangeTriggersRerun(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(file, []byte("v: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runCount atomic.Int32

	out := &syncBuffer{}

	opts := DefaultOptions()
	opts.Files = []string{file}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = out

	done := startWatch(t, ctx, opts, func(context.Context) (*RunResult, error) {
		n := runCount.Add(1)
		levels := []output.Level{level("obj", "a", "wec")}

		if n > 1 {
			levels = append(levels, level("p1", "c", "we-"))
		}

		return &RunResult{Count: len(levels), Levels: levels}, nil
	})

	time.Sleep(200 * time.Millisecond)
	initial := runCount.Load()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, initial, runCount.Load())

	require.NoError(t, os.WriteFile(file, []byte("v: 2\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Greater(t, runCount.Load(), initial, "file change should trigger a rerun")
	assert.Contains(t, out.String(), "+1 property(s) added")

	cancel()
	<-done
}

func TestRun_RunFuncError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())

	out := &syncBuffer{}

	opts := DefaultOptions()
	opts.Files = []string{file}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = out

	done := startWatch(t, ctx, opts, func(context.Context) (*RunResult, error) {
		return nil, fmt.Errorf("broken graph")
	})

	time.Sleep(200 * time.Millisecond)
	assert.Contains(t, out.String(), "ERROR: broken graph")

	cancel()
	<-done
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
	assert.Empty(t, opts.Files)
}
