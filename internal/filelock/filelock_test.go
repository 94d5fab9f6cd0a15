package filelock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock_Contended(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")

	unlock, err := Lock(path)
	require.NoError(t, err)

	_, err = TryLock(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = TryLock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestLockContext_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	unlock, err := Lock(path)
	require.NoError(t, err)
	defer func() { _ = unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = LockContext(ctx, path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLockContext_WaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	unlock, err := Lock(path)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = unlock()
	}()

	got, err := LockContext(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, got())
}
