package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	tasks := filepath.Join(dir, "tasks")
	require.NoError(t, os.Mkdir(tasks, 0o750))
	db := filepath.Join(dir, "planwatch.db")

	w, err := New([]string{tasks, db, db + "-wal"}, func() {})
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name string
		want bool
	}{
		{filepath.Join(tasks, "abcd1234-build.md"), true},
		{filepath.Join(tasks, ".tmp-123.md"), false},
		{db, true},
		{db + "-wal", true},
		{db + "-shm", false},
		{filepath.Join(dir, ".lock"), false},
		{filepath.Join(dir, "activity.jsonl"), false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.name))
		})
	}
}

func TestRun_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	fired := make(chan struct{}, 8)

	w, err := New([]string{dir}, func() {
		calls.Add(1)
		fired <- struct{}{}
	}, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	for i := range 5 {
		name := filepath.Join(dir, "task"+string(rune('a'+i))+".md")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope", "file.db")}, func() {})
	assert.Error(t, err)
}
