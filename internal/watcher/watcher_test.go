package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_IsRelevant(t *testing.T) {
	w := &Watcher{cfg: Config{Ignore: []string{"mixgen_gen.go"}, Extra: []string{"mixgen.hcl"}}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"go write", fsnotify.Event{Name: "/p/a.go", Op: fsnotify.Write}, true},
		{"go create", fsnotify.Event{Name: "/p/a.go", Op: fsnotify.Create}, true},
		{"go remove", fsnotify.Event{Name: "/p/a.go", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/p/a.go", Op: fsnotify.Chmod}, false},
		{"test file", fsnotify.Event{Name: "/p/a_test.go", Op: fsnotify.Write}, false},
		{"generated output", fsnotify.Event{Name: "/p/mixgen_gen.go", Op: fsnotify.Write}, false},
		{"manifest", fsnotify.Event{Name: "/p/mixgen.hcl", Op: fsnotify.Write}, true},
		{"other file", fsnotify.Event{Name: "/p/README.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.isRelevant(tt.event))
		})
	}
}

func TestWatcher_New_MissingDir(t *testing.T) {
	_, err := New(Config{Dirs: []string{filepath.Join(t.TempDir(), "missing")}})
	require.Error(t, err)
}

func TestWatcher_Run_Debounces(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Dirs: []string{dir}, Debounce: 50 * time.Millisecond, Ignore: []string{"mixgen_gen.go"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, dirs []string) {
			batches <- dirs
		})
	}()

	for i := range 3 {
		src := []byte("package p\n\nvar x = " + string(rune('0'+i)) + "\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), src, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mixgen_gen.go"), []byte("package p\n"), 0o644))

	select {
	case dirs := <-batches:
		assert.Equal(t, []string{dir}, dirs)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
