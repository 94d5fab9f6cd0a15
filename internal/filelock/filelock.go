// Package filelock provides advisory file locking for coordinating
// concurrent writers of a project (CLI invocations and the TUI).
package filelock

import (
	"context"
	"errors"
	"os"
	"time"
)

const (
	lockFileMode  = 0o600
	retryInterval = 10 * time.Millisecond
)

// ErrLocked is returned by TryLock when another holder has the lock.
var ErrLocked = errors.New("file is locked by another process")

// Unlock releases a lock taken by Lock, TryLock or LockContext.
type Unlock func() error

// Lock acquires an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases
// the lock and must be called when the critical section is done.
//
// Only one process can hold the lock at a time; other callers block
// until the lock is available.
func Lock(path string) (Unlock, error) {
	return acquire(path, lockFile)
}

// TryLock is like Lock but returns ErrLocked instead of waiting.
func TryLock(path string) (Unlock, error) {
	return acquire(path, tryLockFile)
}

// LockContext polls for the lock until it is acquired or ctx is done.
func LockContext(ctx context.Context, path string) (Unlock, error) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		unlock, err := TryLock(path)
		if !errors.Is(err, ErrLocked) {
			return unlock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func acquire(path string, lock func(*os.File) error) (Unlock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	if err := lock(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
