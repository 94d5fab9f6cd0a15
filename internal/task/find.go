package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
)

// MinPrefixLength is the shortest id prefix ResolveID accepts.
const MinPrefixLength = 4

// ReadAll reads all task files from the given directory.
func ReadAll(tasksDir string) ([]*Task, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []*Task
	for _, entry := range entries {
		if !isTaskFile(entry) {
			continue
		}

		path := filepath.Join(tasksDir, entry.Name())
		t, err := Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

// ReadWarning describes a file that could not be parsed during lenient reading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// ReadAllLenient reads all task files, skipping malformed files instead of aborting.
// Successfully parsed tasks are returned along with warnings for files that failed.
func ReadAllLenient(tasksDir string) ([]*Task, []ReadWarning, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []*Task
	var warnings []ReadWarning
	for _, entry := range entries {
		if !isTaskFile(entry) {
			continue
		}

		path := filepath.Join(tasksDir, entry.Name())
		t, readErr := Read(path)
		if readErr != nil {
			warnings = append(warnings, ReadWarning{File: entry.Name(), Err: readErr})
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, warnings, nil
}

func isTaskFile(entry os.DirEntry) bool {
	name := entry.Name()
	return !entry.IsDir() && filepath.Ext(name) == ".md" && !strings.HasPrefix(name, ".")
}

// ResolveID finds the task referenced by ref, which is either a full id or a
// unique prefix of at least MinPrefixLength characters.
func ResolveID(tasks []*Task, ref string) (*Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ValidateTaskID(ref)
	}

	var matches []*Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if len(ref) >= MinPrefixLength && strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, clierr.Newf(clierr.TaskNotFound, "task not found: %s", ref).
			WithDetails(map[string]any{"id": ref})
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, ValidateAmbiguousID(ref, ids)
	}
}

// ResolveIDs resolves every reference in refs, preserving order and
// dropping repeats.
func ResolveIDs(tasks []*Task, refs []string) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		t, err := ResolveID(tasks, ref)
		if err != nil {
			return nil, err
		}
		if !seen[t.ID] {
			ids = append(ids, t.ID)
			seen[t.ID] = true
		}
	}
	return ids, nil
}
