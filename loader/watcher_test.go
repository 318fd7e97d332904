package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, w *Watcher) WatchEvent {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return WatchEvent{}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "wine.ttl")
	require.NoError(t, os.WriteFile(existing, []byte("a"), 0644))

	w, err := NewWatcher(dir, 20*time.Millisecond, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	created := filepath.Join(dir, "pizza.owl")
	require.NoError(t, os.WriteFile(created, []byte("<rdf:RDF/>"), 0644))
	ev := nextEvent(t, w)
	assert.Equal(t, WatchEvent{Path: created, Op: WatchOpCreate}, ev)

	require.NoError(t, os.WriteFile(existing, []byte("b"), 0644))
	ev = nextEvent(t, w)
	assert.Equal(t, WatchEvent{Path: existing, Op: WatchOpModify}, ev)

	require.NoError(t, os.Remove(existing))
	ev = nextEvent(t, w)
	assert.Equal(t, WatchEvent{Path: existing, Op: WatchOpDelete}, ev)
}

func TestWatcher_FilesAtStart(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "imports")
	hidden := filepath.Join(dir, ".cache")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.MkdirAll(hidden, 0755))
	for _, p := range []string{
		filepath.Join(dir, "wine.ttl"),
		filepath.Join(nested, "food.owl"),
		filepath.Join(dir, "README.md"),
		filepath.Join(hidden, "stale.ttl"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	w, err := NewWatcher(dir, 20*time.Millisecond, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, w.Files())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	assert.Equal(t, []string{
		filepath.Join(nested, "food.owl"),
		filepath.Join(dir, "wine.ttl"),
	}, w.Files())
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 20*time.Millisecond, []string{"ttl"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))
	kept := filepath.Join(dir, "kept.ttl")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))

	ev := nextEvent(t, w)
	assert.Equal(t, kept, ev.Path)
}
