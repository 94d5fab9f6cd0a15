// Package store persists the task set of a project.
package store

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/filelock"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

const lockFileName = ".lock"

// Store loads and saves whole task sets.
type Store interface {
	// Load returns every stored task ordered by creation time, then id.
	// Records that cannot be decoded are skipped and reported as warnings.
	Load(ctx context.Context) ([]*task.Task, []task.ReadWarning, error)
	// Commit writes upserts and removes deletes as one unit.
	Commit(ctx context.Context, upserts []*task.Task, deletes []string) error
	// Lock takes the project write lock.
	Lock(ctx context.Context) (filelock.Unlock, error)
	// Paths lists the filesystem paths whose changes signal new data.
	Paths() []string
	Close() error
}

// Open returns the store configured for the project.
func Open(cfg *config.Config) (Store, error) {
	lockPath := filepath.Join(cfg.Dir(), lockFileName)
	switch cfg.Storage.Driver {
	case config.DriverFiles, "":
		return NewFiles(cfg.TasksPath(), lockPath), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.DatabasePath(), lockPath)
	default:
		return nil, clierr.Newf(clierr.UnsupportedStorage, "unsupported storage driver %q", cfg.Storage.Driver).
			WithDetails(map[string]any{"driver": cfg.Storage.Driver, "allowed": config.Drivers})
	}
}

// SortTasks orders tasks by creation time, then id. Scheduling ties follow
// this order, so loads are deterministic.
func SortTasks(tasks []*task.Task) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
