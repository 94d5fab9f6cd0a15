package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var base = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

func mk(id, title string, created time.Duration) *task.Task {
	return &task.Task{
		ID:                id,
		Title:             title,
		Status:            "todo",
		EstimatedDuration: 2,
		Start:             date.New(2024, time.January, 1),
		End:               date.New(2024, time.January, 2),
		Created:           base.Add(created),
		Updated:           base.Add(created),
	}
}

// each runs fn against both store implementations.
func each(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("files", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFiles(filepath.Join(dir, "tasks"), filepath.Join(dir, lockFileName))
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		s, err := OpenSQLite(filepath.Join(dir, "plan.db"), filepath.Join(dir, lockFileName))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestStore_EmptyLoad(t *testing.T) {
	each(t, func(t *testing.T, s Store) {
		tasks, warnings, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.Empty(t, warnings)
	})
}

func TestStore_CommitAndLoadOrdered(t *testing.T) {
	each(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c := mk("cccc0000-1", "Third", 2*time.Hour)
		b := mk("bbbb0000-1", "Tie later id", time.Hour)
		a := mk("aaaa0000-1", "Tie earlier id", time.Hour)
		a.WorkingDays = date.Weekdays{}
		a.Dependencies = []string{"cccc0000-1"}
		a.Body = "notes\n"
		require.NoError(t, s.Commit(ctx, []*task.Task{c, b, a}, nil))

		tasks, _, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"aaaa0000-1", "bbbb0000-1", "cccc0000-1"}, ids(tasks))

		got := tasks[0]
		assert.Equal(t, "Tie earlier id", got.Title)
		assert.Equal(t, []string{"cccc0000-1"}, got.Dependencies)
		assert.NotNil(t, got.WorkingDays, "explicit empty calendar survives")
		assert.Empty(t, got.WorkingDays)
		assert.Nil(t, tasks[1].WorkingDays)
		assert.Equal(t, "notes\n", got.Body)
		assert.Equal(t, date.New(2024, time.January, 2), got.End)
		assert.True(t, got.Created.Equal(a.Created))
	})
}

func TestStore_UpdateAndDelete(t *testing.T) {
	each(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := mk("aaaa0000-1", "Alpha", 0)
		b := mk("bbbb0000-1", "Beta", time.Minute)
		require.NoError(t, s.Commit(ctx, []*task.Task{a, b}, nil))

		renamed := a.Clone()
		renamed.Title = "Alpha renamed"
		renamed.EstimatedDuration = 7
		require.NoError(t, s.Commit(ctx, []*task.Task{renamed}, []string{"bbbb0000-1", "never-existed"}))

		tasks, _, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Alpha renamed", tasks[0].Title)
		assert.Equal(t, 7, tasks[0].EstimatedDuration)
	})
}

func TestFiles_RenameRemovesOldFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFiles(dir, filepath.Join(dir, lockFileName))
	ctx := context.Background()

	a := mk("aaaa0000-1", "Old title", 0)
	require.NoError(t, s.Commit(ctx, []*task.Task{a}, nil))
	assert.FileExists(t, filepath.Join(dir, "aaaa0000-old-title.md"))

	a.Title = "New title"
	require.NoError(t, s.Commit(ctx, []*task.Task{a}, nil))
	assert.FileExists(t, filepath.Join(dir, "aaaa0000-new-title.md"))
	assert.NoFileExists(t, filepath.Join(dir, "aaaa0000-old-title.md"))
	assert.Equal(t, filepath.Join(dir, "aaaa0000-new-title.md"), a.File)
}

func TestFiles_FailedCommitLeavesDirectoryUnchanged(t *testing.T) {
	dir := t.TempDir()
	s := NewFiles(dir, filepath.Join(dir, lockFileName))
	ctx := context.Background()

	a := mk("aaaa0000-1", "Alpha", 0)
	b := mk("bbbb0000-1", "Beta", time.Minute)
	require.NoError(t, s.Commit(ctx, []*task.Task{a, b}, nil))

	longer := a.Clone()
	longer.EstimatedDuration = 9
	renamed := b.Clone()
	renamed.Title = "Beta renamed"
	require.NoError(t, os.Mkdir(filepath.Join(dir, task.Filename(renamed)), 0o750))

	err := s.Commit(ctx, []*task.Task{longer, renamed}, []string{"aaaa0000-1"})
	require.Error(t, err)

	onDisk, err := task.Read(filepath.Join(dir, "aaaa0000-alpha.md"))
	require.NoError(t, err)
	assert.Equal(t, 2, onDisk.EstimatedDuration)
	assert.FileExists(t, filepath.Join(dir, "bbbb0000-beta.md"))
	assertNoTempFiles(t, dir)
}

func TestFiles_PlaceRollsBackEarlierRenames(t *testing.T) {
	dir := t.TempDir()
	s := NewFiles(dir, filepath.Join(dir, lockFileName))
	ctx := context.Background()

	a := mk("aaaa0000-1", "Alpha", 0)
	require.NoError(t, s.Commit(ctx, []*task.Task{a}, nil))

	longer := a.Clone()
	longer.EstimatedDuration = 9
	fresh := mk("cccc0000-1", "Gamma", time.Hour)
	all, err := s.stage(ctx, []*task.Task{longer, fresh})
	require.NoError(t, err)
	require.NoError(t, os.Remove(all[1].tmp))

	require.Error(t, placeAll(all))

	onDisk, err := task.Read(filepath.Join(dir, "aaaa0000-alpha.md"))
	require.NoError(t, err)
	assert.Equal(t, 2, onDisk.EstimatedDuration)
	assert.NoFileExists(t, filepath.Join(dir, "cccc0000-gamma.md"))
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "leftover %s", e.Name())
	}
}

func TestFiles_MalformedFileIsWarning(t *testing.T) {
	dir := t.TempDir()
	s := NewFiles(dir, filepath.Join(dir, lockFileName))
	require.NoError(t, s.Commit(context.Background(), []*task.Task{mk("aaaa0000-1", "ok", 0)}, nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zzz-bad.md"), []byte("nope"), 0o600))

	tasks, warnings, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, "zzz-bad.md", warnings[0].File)
}

func TestStore_LockIsExclusive(t *testing.T) {
	each(t, func(t *testing.T, s Store) {
		unlock, err := s.Lock(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()
		_, err = s.Lock(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock())
		again, err := s.Lock(context.Background())
		require.NoError(t, err)
		require.NoError(t, again())
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefault("p")
	cfg.SetDir(dir)

	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Files{}, s)
	assert.Equal(t, []string{cfg.TasksPath()}, s.Paths())

	cfg.Storage.Driver = config.DriverSQLite
	s, err = Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.IsType(t, &SQLite{}, s)
	assert.FileExists(t, cfg.DatabasePath())

	cfg.Storage.Driver = "mongo"
	_, err = Open(cfg)
	assert.Error(t, err)
}
