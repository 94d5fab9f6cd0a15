package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/planwatch/internal/filelock"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// Files keeps one markdown file per task in a directory.
type Files struct {
	dir      string
	lockPath string
}

// NewFiles returns a Files store rooted at dir.
func NewFiles(dir, lockPath string) *Files {
	return &Files{dir: dir, lockPath: lockPath}
}

// Load reads every task file. Malformed files are reported as warnings.
func (s *Files) Load(ctx context.Context) ([]*task.Task, []task.ReadWarning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	tasks, warnings, err := task.ReadAllLenient(s.dir)
	if err != nil {
		return nil, nil, err
	}
	SortTasks(tasks)
	return tasks, warnings, nil
}

// Commit writes upserts and removes deletes as one unit. Every upsert is
// staged as a temp file before anything is renamed into place; if staging or
// placing fails, the directory is left as it was. A task whose title changed
// is written under its new name and its old file is removed afterwards.
func (s *Files) Commit(ctx context.Context, upserts []*task.Task, deletes []string) error {
	const dirMode = 0o750
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("creating tasks directory: %w", err)
	}

	existing, err := s.index()
	if err != nil {
		return err
	}

	staged, err := s.stage(ctx, upserts)
	if err != nil {
		return err
	}
	if err := placeAll(staged); err != nil {
		return err
	}

	for _, st := range staged {
		if old, ok := existing[st.task.ID]; ok && old != st.path {
			if err := removeIfExists(old); err != nil {
				return err
			}
		}
		st.task.File = st.path
	}

	for _, id := range deletes {
		old, ok := existing[id]
		if !ok {
			continue
		}
		if err := removeIfExists(old); err != nil {
			return err
		}
	}
	return nil
}

// stagedFile is an upsert written to a temp file but not yet in place.
type stagedFile struct {
	task   *task.Task
	tmp    string
	path   string
	backup string
	placed bool
}

func (s *Files) stage(ctx context.Context, upserts []*task.Task) ([]*stagedFile, error) {
	out := make([]*stagedFile, 0, len(upserts))
	for _, t := range upserts {
		if err := ctx.Err(); err != nil {
			discard(out)
			return nil, err
		}
		path := filepath.Join(s.dir, task.Filename(t))
		if info, err := os.Lstat(path); err == nil && !info.Mode().IsRegular() {
			discard(out)
			return nil, fmt.Errorf("saving task %s: %s is not a regular file", t.ShortID(), filepath.Base(path))
		}
		tmp, err := task.WriteTemp(s.dir, t)
		if err != nil {
			discard(out)
			return nil, fmt.Errorf("saving task %s: %w", t.ShortID(), err)
		}
		out = append(out, &stagedFile{task: t, tmp: tmp, path: path})
	}
	return out, nil
}

// placeAll renames every staged file into place. An existing target is moved
// aside first so a failure part way through can put it back.
func placeAll(all []*stagedFile) error {
	for i, st := range all {
		if err := st.place(); err != nil {
			for j := i - 1; j >= 0; j-- {
				all[j].restore()
			}
			discard(all)
			return fmt.Errorf("saving task %s: %w", st.task.ShortID(), err)
		}
	}
	for _, st := range all {
		if st.backup != "" {
			_ = os.Remove(st.backup)
		}
	}
	return nil
}

func (st *stagedFile) place() error {
	if _, err := os.Lstat(st.path); err == nil {
		st.backup = st.tmp + ".bak"
		if err := os.Rename(st.path, st.backup); err != nil {
			st.backup = ""
			return fmt.Errorf("moving aside %s: %w", filepath.Base(st.path), err)
		}
	}
	if err := os.Rename(st.tmp, st.path); err != nil {
		if st.backup != "" {
			_ = os.Rename(st.backup, st.path)
			st.backup = ""
		}
		return fmt.Errorf("renaming task file: %w", err)
	}
	st.placed = true
	return nil
}

func (st *stagedFile) restore() {
	if !st.placed {
		return
	}
	if st.backup != "" {
		_ = os.Rename(st.backup, st.path)
		st.backup = ""
	} else {
		_ = os.Remove(st.path)
	}
	st.placed = false
}

// discard removes temp files that were never placed.
func discard(all []*stagedFile) {
	for _, st := range all {
		if !st.placed {
			_ = os.Remove(st.tmp)
		}
	}
}

// index maps task ids to their current file path.
func (s *Files) index() (map[string]string, error) {
	tasks, _, err := task.ReadAllLenient(s.dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t.File
	}
	return out, nil
}

// Lock takes the project lock file.
func (s *Files) Lock(ctx context.Context) (filelock.Unlock, error) {
	return filelock.LockContext(ctx, s.lockPath)
}

// Paths returns the tasks directory.
func (s *Files) Paths() []string {
	return []string{s.dir}
}

// Close is a no-op.
func (s *Files) Close() error { return nil }

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
	}
	return nil
}
