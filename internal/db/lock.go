package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName   = "write.lock"
	defaultTimeout = 500 * time.Millisecond
)

// writeLocker serializes writes across processes through an exclusive
// lock file next to the database.
type writeLocker struct {
	path string
	file *os.File
}

func newWriteLocker(baseDir string) *writeLocker {
	return &writeLocker{path: filepath.Join(baseDir, ".mphub", lockFileName)}
}

// acquire takes the exclusive lock, retrying with backoff until timeout.
func (l *writeLocker) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := acquireFileLockTimeout(f, timeout); err != nil {
		f.Close()
		return fmt.Errorf("acquire write lock: %w", err)
	}
	l.file = f
	return nil
}

// release drops the lock and closes the handle. Safe to call when the
// lock was never acquired.
func (l *writeLocker) release() {
	if l.file == nil {
		return
	}
	releaseFileLock(l.file)
	l.file.Close()
	l.file = nil
}
