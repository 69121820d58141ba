package logstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// fileLock is an advisory lock shared by every process appending to the
// same origin directory.
type fileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

func newFileLock(path string) *fileLock {
	return &fileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Lock blocks until the lock is held. The lock file is created on demand.
func (l *fileLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), defaultDirMode); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *fileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
